package config

// DefaultConfig returns configuration with sensible defaults. These are used
// when no config file exists or a loaded file leaves a field unset.
func DefaultConfig() *Config {
	return &Config{
		Paths: PathsConfig{
			Containers: []string{
				"app", "src", "lib", "server", "client", "pages", "screens",
				"components", "fragments", "actions", "modules", "tables",
				"db", "schema", "features", "api",
			},
			AppRoots:   []string{"apps", "packages"},
			EntryFiles: []string{"page", "index", "layout", "route", "loading", "error"},
		},
		Tests: TestsConfig{
			Patterns: []string{
				"**/*.test.{ts,tsx,js,jsx,mjs,cjs}",
				"**/*.spec.{ts,tsx,js,jsx,mjs,cjs}",
				"**/__tests__/**/*.{ts,tsx,js,jsx}",
			},
			TestDirs:    []string{"__tests__", "tests", "test", "e2e", "spec", "unit", "integration"},
			ActionGlobs: []string{"**/tests/actions/**", "**/__tests__/actions/**", "**/actions/**/*.test.*"},
			ScreenGlobs: []string{"**/e2e/**", "**/tests/e2e/**", "**/*.spec.*"},
			E2EGlobs:    []string{"**/e2e/**", "**/playwright/**", "**/*.e2e.*"},
		},
		Coverage: CoverageConfig{
			PerTest:        8,
			TestCap:        5,
			PerCategory:    15,
			MissingPenalty: 5,
		},
		Output: OutputConfig{
			Snapshot: ".annodoc/snapshot.json",
			Format:   "json",
			Workers:  0,
		},
	}
}

// Merge merges loaded config with defaults. Values from loaded take
// precedence; empty lists and zero numbers fall back to the defaults. Coverage
// weights are the exception: zero is a valid weight, so they are taken from
// loaded as-is and LoadFromPath seeds them with the defaults before decoding.
func Merge(loaded, defaults *Config) *Config {
	return &Config{
		Paths: PathsConfig{
			Containers: pickList(loaded.Paths.Containers, defaults.Paths.Containers),
			AppRoots:   pickList(loaded.Paths.AppRoots, defaults.Paths.AppRoots),
			EntryFiles: pickList(loaded.Paths.EntryFiles, defaults.Paths.EntryFiles),
		},
		Tests: TestsConfig{
			Patterns:    pickList(loaded.Tests.Patterns, defaults.Tests.Patterns),
			TestDirs:    pickList(loaded.Tests.TestDirs, defaults.Tests.TestDirs),
			ActionGlobs: pickList(loaded.Tests.ActionGlobs, defaults.Tests.ActionGlobs),
			ScreenGlobs: pickList(loaded.Tests.ScreenGlobs, defaults.Tests.ScreenGlobs),
			E2EGlobs:    pickList(loaded.Tests.E2EGlobs, defaults.Tests.E2EGlobs),
		},
		Coverage: loaded.Coverage,
		Output: OutputConfig{
			Snapshot: pickString(loaded.Output.Snapshot, defaults.Output.Snapshot),
			Format:   pickString(loaded.Output.Format, defaults.Output.Format),
			Workers:  pickInt(loaded.Output.Workers, defaults.Output.Workers),
		},
	}
}

func pickList(loaded, defaults []string) []string {
	if len(loaded) > 0 {
		return loaded
	}
	return append([]string(nil), defaults...)
}

func pickInt(loaded, defaults int) int {
	if loaded != 0 {
		return loaded
	}
	return defaults
}

func pickString(loaded, defaults string) string {
	if loaded != "" {
		return loaded
	}
	return defaults
}
