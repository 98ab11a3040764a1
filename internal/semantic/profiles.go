package semantic

import (
	"regexp"

	"cce/internal/model"
)

// builtinProfiles returns the default language profile table. Each entry
// is purely declarative: adding a language means adding a table row, not
// a new parser implementation.
func builtinProfiles() []LanguageProfile {
	return []LanguageProfile{
		goProfile(),
		curlyBraceProfile(),
		pythonProfile(),
	}
}

// goProfile recognizes Go's function/method/type/const/var declaration
// forms.
func goProfile() LanguageProfile {
	return LanguageProfile{
		Name:       "go",
		Extensions: []string{".go"},
		SymbolPatterns: []SymbolPattern{
			{
				Kind:      model.SymbolFunction,
				Regex:     regexp.MustCompile(`^func\s+([A-Za-z_][A-Za-z0-9_]*)\s*\(`),
				NameGroup: 1,
			},
			{
				Kind:      model.SymbolMethod,
				Regex:     regexp.MustCompile(`^func\s*\([^)]*\)\s*([A-Za-z_][A-Za-z0-9_]*)\s*\(`),
				NameGroup: 1,
			},
			{
				Kind:      model.SymbolType,
				Regex:     regexp.MustCompile(`^type\s+([A-Za-z_][A-Za-z0-9_]*)\s+struct\b`),
				NameGroup: 1,
			},
			{
				Kind:      model.SymbolInterface,
				Regex:     regexp.MustCompile(`^type\s+([A-Za-z_][A-Za-z0-9_]*)\s+interface\b`),
				NameGroup: 1,
			},
			{
				Kind:      model.SymbolType,
				Regex:     regexp.MustCompile(`^type\s+([A-Za-z_][A-Za-z0-9_]*)\s+\w`),
				NameGroup: 1,
			},
			{
				Kind:      model.SymbolVariable,
				Regex:     regexp.MustCompile(`^const\s+([A-Za-z_][A-Za-z0-9_]*)\s*`),
				NameGroup: 1,
			},
			{
				Kind:      model.SymbolVariable,
				Regex:     regexp.MustCompile(`^var\s+([A-Za-z_][A-Za-z0-9_]*)\s*`),
				NameGroup: 1,
			},
		},
		ImportPatterns: []*regexp.Regexp{
			regexp.MustCompile(`(?m)^\s*"([^"]+)"\s*$`),
		},
		DefaultExported: isUpperFirst,
	}
}

// curlyBraceProfile covers the JavaScript/TypeScript/Java/C-like family:
// class/interface/function declarations with brace bodies and ES-module
// or CommonJS style import/export statements.
func curlyBraceProfile() LanguageProfile {
	return LanguageProfile{
		Name:       "curly",
		Extensions: []string{".js", ".jsx", ".ts", ".tsx", ".java", ".c", ".h", ".cpp", ".hpp", ".cs"},
		SymbolPatterns: []SymbolPattern{
			{
				Kind:      model.SymbolClass,
				Regex:     regexp.MustCompile(`\bclass\s+([A-Za-z_$][A-Za-z0-9_$]*)`),
				NameGroup: 1,
				Exported:  isUpperFirst,
			},
			{
				Kind:      model.SymbolInterface,
				Regex:     regexp.MustCompile(`\binterface\s+([A-Za-z_$][A-Za-z0-9_$]*)`),
				NameGroup: 1,
				Exported:  isUpperFirst,
			},
			{
				Kind:      model.SymbolEnum,
				Regex:     regexp.MustCompile(`\benum\s+([A-Za-z_$][A-Za-z0-9_$]*)`),
				NameGroup: 1,
				Exported:  isUpperFirst,
			},
			{
				Kind:      model.SymbolFunction,
				Regex:     regexp.MustCompile(`\bfunction\s*\*?\s+([A-Za-z_$][A-Za-z0-9_$]*)\s*\(`),
				NameGroup: 1,
			},
			{
				Kind:      model.SymbolFunction,
				Regex:     regexp.MustCompile(`\b(?:export\s+)?const\s+([A-Za-z_$][A-Za-z0-9_$]*)\s*=\s*(?:async\s*)?\([^)]*\)\s*(?::\s*[^=]+)?=>`),
				NameGroup: 1,
			},
			{
				Kind:      model.SymbolMethod,
				Regex:     regexp.MustCompile(`^\s*(?:public|private|protected|static|async)?\s*([A-Za-z_$][A-Za-z0-9_$]*)\s*\([^)]*\)\s*\{`),
				NameGroup: 1,
			},
		},
		ImportPatterns: []*regexp.Regexp{
			regexp.MustCompile(`\bimport\s+(?:[\w*${},\s]+\s+from\s+)?['"]([^'"]+)['"]`),
			regexp.MustCompile(`\brequire\(\s*['"]([^'"]+)['"]\s*\)`),
		},
		ExportPatterns: []*regexp.Regexp{
			regexp.MustCompile(`\bexport\s+default\s+(?:class|function)?\s*([A-Za-z_$][A-Za-z0-9_$]*)?`),
			regexp.MustCompile(`\bexport\s+(?:class|function|const|interface|enum)\s+([A-Za-z_$][A-Za-z0-9_$]*)`),
			regexp.MustCompile(`\bexport\s*\{\s*([^}]+)\s*\}`),
		},
	}
}

// pythonProfile covers the indentation-delimited family: def/class blocks
// and import statements.
func pythonProfile() LanguageProfile {
	return LanguageProfile{
		Name:       "python",
		Extensions: []string{".py"},
		SymbolPatterns: []SymbolPattern{
			{
				Kind:      model.SymbolClass,
				Regex:     regexp.MustCompile(`^class\s+([A-Za-z_][A-Za-z0-9_]*)`),
				NameGroup: 1,
				Exported:  func(name string) bool { return len(name) > 0 && name[0] != '_' },
			},
			{
				Kind:      model.SymbolFunction,
				Regex:     regexp.MustCompile(`^def\s+([A-Za-z_][A-Za-z0-9_]*)\s*\(`),
				NameGroup: 1,
				Exported:  func(name string) bool { return len(name) > 0 && name[0] != '_' },
			},
			{
				Kind:      model.SymbolMethod,
				Regex:     regexp.MustCompile(`^\s+def\s+([A-Za-z_][A-Za-z0-9_]*)\s*\(`),
				NameGroup: 1,
				Exported:  func(name string) bool { return len(name) > 0 && name[0] != '_' },
			},
		},
		ImportPatterns: []*regexp.Regexp{
			regexp.MustCompile(`(?m)^\s*import\s+([\w.]+)`),
			regexp.MustCompile(`(?m)^\s*from\s+([\w.]+)\s+import\b`),
		},
	}
}
