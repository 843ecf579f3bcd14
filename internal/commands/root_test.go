package commands

import (
	"os"
	"strings"
	"testing"
)

func TestRootCommand_Help(t *testing.T) {
	cmd := rootCmd
	if cmd.Use != "cookieschat [prompt]" {
		t.Errorf("Expected use 'cookieschat [prompt]', got %s", cmd.Use)
	}

	if cmd.Short == "" {
		t.Error("Short description should not be empty")
	}

	if cmd.Long == "" {
		t.Error("Long description should not be empty")
	}
}

func TestRootCommand_Subcommands(t *testing.T) {
	want := map[string]bool{"chat": false, "serve": false, "config": false}
	for _, sub := range rootCmd.Commands() {
		if _, ok := want[sub.Name()]; ok {
			want[sub.Name()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("subcommand %q not registered", name)
		}
	}
}

func TestRootCommand_Flags(t *testing.T) {
	for _, name := range []string{"output", "file", "raw", "version"} {
		if rootCmd.Flags().Lookup(name) == nil {
			t.Errorf("flag --%s not defined", name)
		}
	}
	for _, name := range []string{"model", "backend"} {
		if rootCmd.PersistentFlags().Lookup(name) == nil {
			t.Errorf("persistent flag --%s not defined", name)
		}
	}
}

func TestRootCommand_Version(t *testing.T) {
	env := setupTestDeps(t, testConfig(), &fakeGenerator{})

	rootCmd.SetArgs([]string{"--version"})
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if !strings.HasPrefix(env.stdout.String(), "cookieschat "+Version) {
		t.Errorf("stdout = %q", env.stdout.String())
	}
}

func TestRootCommand_Inputs(t *testing.T) {
	tests := []struct {
		name   string
		args   []string
		stdin  string
		file   string
		prompt string
	}{
		{name: "positional", args: []string{"hola"}, prompt: "hola"},
		{name: "stdin", stdin: "desde stdin\n", prompt: "desde stdin"},
		{name: "file", file: "desde archivo", prompt: "desde archivo"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := &fakeGenerator{reply: "ok"}
			env := setupTestDeps(t, testConfig(), gen)

			args := tt.args
			if tt.stdin != "" {
				deps.Stdin = strings.NewReader(tt.stdin)
				deps.StdinPiped = func() bool { return true }
			}
			if tt.file != "" {
				path := t.TempDir() + "/prompt.md"
				if err := os.WriteFile(path, []byte(tt.file), 0o600); err != nil {
					t.Fatalf("write prompt: %v", err)
				}
				args = append([]string{"-f", path}, args...)
			}
			if args == nil {
				args = []string{}
			}

			rootCmd.SetArgs(args)
			if err := rootCmd.Execute(); err != nil {
				t.Fatalf("Execute() error: %v", err)
			}
			if len(gen.prompts) != 1 || gen.prompts[0] != tt.prompt {
				t.Errorf("prompts = %q, want %q", gen.prompts, tt.prompt)
			}
			if env.stdout.String() != "ok\n" {
				t.Errorf("stdout = %q", env.stdout.String())
			}
		})
	}
}

func TestRootCommand_MissingFile(t *testing.T) {
	setupTestDeps(t, testConfig(), &fakeGenerator{})

	rootCmd.SetArgs([]string{"-f", t.TempDir() + "/missing.md"})
	err := rootCmd.Execute()
	if err == nil || !strings.Contains(err.Error(), "failed to read file") {
		t.Errorf("Execute() error = %v", err)
	}
}
