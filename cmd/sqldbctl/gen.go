package main

import (
	"fmt"
	"go/token"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/fatih/color"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/Sterbis/sqldatabase/schemagen"
)

var (
	genSpecPath string
	genOutPath  string
	genPackage  string
	genWatch    bool
)

var genCmd = &cobra.Command{
	Use:   "gen",
	Short: "Generate typed Go schema code from a YAML spec",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := schemagen.Config{Package: genPackage}
		if cfg.Package == "" {
			cfg.Package = packageFromPath(genOutPath)
			if cfg.Package == "" {
				return fmt.Errorf("cannot derive a package name from %s, pass --package", genOutPath)
			}
		}
		if err := generate(cfg); err != nil {
			if !genWatch {
				return err
			}
			// In watch mode a broken spec is reported and watched for a fix.
			color.Red("Error: %v", err)
		}
		if !genWatch {
			return nil
		}
		return watchSpec(cmd, cfg)
	},
}

func init() {
	genCmd.Flags().StringVarP(&genSpecPath, "spec", "s", "schema.yaml", "path of the YAML schema spec")
	genCmd.Flags().StringVarP(&genOutPath, "out", "o", "schema_gen.go", "path of the generated Go file")
	genCmd.Flags().StringVarP(&genPackage, "package", "p", "", "package name of the generated file (default: output directory name)")
	genCmd.Flags().BoolVarP(&genWatch, "watch", "w", false, "keep running and regenerate whenever the spec changes")
	rootCmd.AddCommand(genCmd)
}

func generate(cfg schemagen.Config) error {
	if err := schemagen.GenerateFile(genSpecPath, genOutPath, cfg); err != nil {
		return err
	}
	color.New(color.FgGreen, color.Bold).Printf("Generated %s from %s\n", genOutPath, genSpecPath)
	return nil
}

// watchSpec regenerates on every change of the spec file until the command
// context ends. Editors commonly replace files on save instead of writing in
// place, so the watch covers the parent directory and events are filtered by
// name.
func watchSpec(cmd *cobra.Command, cfg schemagen.Config) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch spec: %w", err)
	}
	defer watcher.Close()
	dir := filepath.Dir(genSpecPath)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	color.New(color.FgCyan).Printf("Watching %s\n", genSpecPath)
	target := filepath.Clean(genSpecPath)
	for {
		select {
		case <-cmd.Context().Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if err := generate(cfg); err != nil {
				color.Red("Error: %v", err)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			color.Red("Watch error: %v", err)
		}
	}
}

// packageFromPath derives a package name from the output file's directory.
// It returns "" when the directory does not yield a usable identifier.
func packageFromPath(outPath string) string {
	dir := filepath.Base(filepath.Dir(outPath))
	if dir == "." || dir == string(filepath.Separator) {
		return ""
	}
	var b strings.Builder
	for _, r := range strings.ToLower(dir) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	name := b.String()
	if !token.IsIdentifier(name) {
		return ""
	}
	return name
}
