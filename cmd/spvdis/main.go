// Command spvdis prints the instruction listing of a SPIR-V binary.
//
// Usage:
//
//	spvdis shader.spv
//	spvdis shader.spv --stats    # opcode histogram instead of the listing
package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/ComedicChimera/olive"
	"github.com/pterm/pterm"

	"github.com/gogpu/shaderkit/spirv"
)

var (
	errorStyleBG = pterm.NewStyle(pterm.BgRed, pterm.FgWhite)
	errorColorFG = pterm.FgRed
	countColorFG = pterm.FgLightGreen
)

func fail(tag string, err error) {
	errorStyleBG.Print(tag)
	errorColorFG.Println(" " + err.Error())
	os.Exit(1)
}

func main() {
	cli := olive.NewCLI("spvdis", "spvdis prints the instructions of a SPIR-V binary", true)
	cli.AddPrimaryArg("file", "the SPIR-V file", true)
	cli.AddFlag("stats", "s", "print how often each opcode occurs")

	result, err := olive.ParseArgs(cli, os.Args)
	if err != nil {
		fail("CLI Usage Error", err)
	}
	path, _ := result.PrimaryArg()
	data, err := os.ReadFile(path)
	if err != nil {
		fail("File Error", err)
	}
	words, err := spirv.Words(data)
	if err != nil {
		fail("SPIR-V Error", err)
	}

	if result.HasFlag("stats") {
		if err := printStats(words); err != nil {
			fail("SPIR-V Error", err)
		}
		return
	}
	if err := spirv.Dump(os.Stdout, words); err != nil {
		fail("SPIR-V Error", err)
	}
}

// opcodeCount is one row of the histogram.
type opcodeCount struct {
	op    spirv.OpCode
	count int
}

func countOpcodes(insts []spirv.Instruction) []opcodeCount {
	counts := make(map[spirv.OpCode]int)
	for _, inst := range insts {
		counts[inst.Opcode]++
	}
	rows := make([]opcodeCount, 0, len(counts))
	for op, n := range counts {
		rows = append(rows, opcodeCount{op, n})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].count != rows[j].count {
			return rows[i].count > rows[j].count
		}
		return rows[i].op < rows[j].op
	})
	return rows
}

func printStats(words []uint32) error {
	header, insts, err := spirv.Decode(words)
	if err != nil {
		return err
	}
	fmt.Printf("SPIR-V %s, bound %d, %d instructions\n", header.Version, header.Bound, len(insts))
	for _, row := range countOpcodes(insts) {
		fmt.Printf("%s  %s\n", countColorFG.Sprint(fmt.Sprintf("%6d", row.count)), row.op)
	}
	return nil
}
