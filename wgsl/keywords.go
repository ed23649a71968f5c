package wgsl

// reserved holds WGSL keywords, reserved words and predeclared names that
// a synthesized or imported identifier must not take.
var reserved = map[string]struct{}{}

func init() {
	for _, word := range []string{
		// Keywords.
		"alias", "break", "case", "const", "const_assert", "continue", "continuing",
		"default", "diagnostic", "discard", "else", "enable", "false", "fn", "for",
		"if", "let", "loop", "override", "requires", "return", "struct", "switch",
		"true", "var", "while",
		// Reserved words.
		"NULL", "Self", "abstract", "active", "alignas", "alignof", "as", "asm",
		"asm_fragment", "async", "attribute", "auto", "await", "become", "cast",
		"catch", "class", "co_await", "co_return", "co_yield", "coherent",
		"column_major", "common", "compile", "compile_fragment", "concept",
		"const_cast", "consteval", "constexpr", "constinit", "crate", "debugger",
		"decltype", "delete", "demote", "demote_to_helper", "do", "dynamic_cast",
		"enum", "explicit", "export", "extends", "extern", "external", "fallthrough",
		"filter", "final", "finally", "friend", "from", "fxgroup", "get", "goto",
		"groupshared", "highp", "impl", "implements", "import", "inline",
		"instanceof", "interface", "layout", "lowp", "macro", "macro_rules", "match",
		"mediump", "meta", "mod", "module", "move", "mut", "mutable", "namespace",
		"new", "nil", "noexcept", "noinline", "nointerpolation", "non_coherent",
		"noncoherent", "noperspective", "null", "nullptr", "of", "operator",
		"package", "packoffset", "partition", "pass", "patch", "pixelfragment",
		"precise", "precision", "premerge", "priv", "protected", "pub", "public",
		"readonly", "ref", "regardless", "register", "reinterpret_cast", "require",
		"resource", "restrict", "self", "set", "shared", "sizeof", "smooth", "snorm",
		"static", "static_assert", "static_cast", "std", "subroutine", "super",
		"target", "template", "this", "thread_local", "throw", "trait", "try", "type",
		"typedef", "typeid", "typename", "typeof", "union", "unless", "unorm",
		"unsafe", "unsized", "use", "using", "varying", "virtual", "volatile", "wgsl",
		"where", "with", "writeonly", "yield",
		// Predeclared types.
		"bool", "f16", "f32", "i32", "u32", "vec2", "vec3", "vec4", "mat2x2",
		"mat2x3", "mat2x4", "mat3x2", "mat3x3", "mat3x4", "mat4x2", "mat4x3",
		"mat4x4", "array", "atomic", "ptr", "sampler", "sampler_comparison",
		"texture_1d", "texture_2d", "texture_2d_array", "texture_3d", "texture_cube",
		"texture_cube_array", "texture_multisampled_2d", "texture_depth_2d",
		"texture_depth_2d_array", "texture_depth_cube", "texture_depth_cube_array",
		"texture_depth_multisampled_2d", "texture_storage_1d", "texture_storage_2d",
		"texture_storage_2d_array", "texture_storage_3d", "binding_array",
	} {
		reserved[word] = struct{}{}
	}
}

func isKeyword(name string) bool {
	_, ok := reserved[name]
	return ok
}

// escapeKeyword makes name usable as a WGSL identifier.
func escapeKeyword(name string) string {
	if name == "" {
		return "_"
	}
	if isKeyword(name) {
		return name + "_"
	}
	// Identifiers starting with two underscores are reserved.
	if len(name) >= 2 && name[0] == '_' && name[1] == '_' {
		return "v" + name
	}
	return name
}
