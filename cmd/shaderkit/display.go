package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/pterm/pterm"
)

var (
	successColorFG = pterm.FgLightGreen
	successStyleBG = pterm.NewStyle(pterm.BgLightGreen, pterm.FgBlack)
	warnColorFG    = pterm.FgYellow
	warnStyleBG    = pterm.NewStyle(pterm.BgYellow, pterm.FgBlack)
	errorColorFG   = pterm.FgRed
	errorStyleBG   = pterm.NewStyle(pterm.BgRed, pterm.FgWhite)
	headingColorFG = pterm.FgLightCyan
)

func printErrorMessage(tag string, err error) {
	errorStyleBG.Print(tag)
	errorColorFG.Println(" " + err.Error())
}

func printWarningMessage(tag, msg string) {
	warnStyleBG.Print(tag)
	warnColorFG.Println(" " + msg)
}

func printInfoMessage(tag, msg string) {
	successStyleBG.Print(tag)
	successColorFG.Println(" " + msg)
}

// printHeading prints a dashed banner naming a section of a report.
func printHeading(title string) {
	width := pterm.GetTerminalWidth() / 2
	if width > 50 {
		width = 50
	}
	dashes := width - len(title) - 4
	if dashes < 3 {
		dashes = 3
	}
	fmt.Print("\n-- ")
	headingColorFG.Print(title)
	fmt.Println(" " + strings.Repeat("-", dashes))
}

// fail prints err under tag and exits.
func fail(tag string, err error) {
	printErrorMessage(tag, err)
	os.Exit(1)
}
