// Package scaffold creates the moot.yml configuration file for new projects.
package scaffold

import (
	"embed"
	"fmt"
	"os"
	"strings"

	"github.com/dyluth/moot/internal/config"
)

//go:embed templates/*
var templatesFS embed.FS

// GitignoreEntry is added to .gitignore so recorded deliberation traces stay
// out of version control.
const GitignoreEntry = "traces/"

// FileInfo represents a file to be created during initialization
type FileInfo struct {
	Path        string
	Content     []byte
	Permissions os.FileMode
}

// Initialize creates the Moot project structure in the current directory.
// If force is true, it will remove an existing moot.yml first.
func Initialize(force bool) error {
	if force {
		if err := handleForce(); err != nil {
			return err
		}
	}

	files, err := getTemplateFiles()
	if err != nil {
		return err
	}

	if err := writeFiles(files); err != nil {
		return err
	}

	if err := validateCreatedFiles(); err != nil {
		return err
	}

	return ensureGitignore()
}

// handleForce removes existing files if --force was specified
func handleForce() error {
	if _, err := os.Stat("moot.yml"); err == nil {
		fmt.Println("⚠️  Removing existing moot.yml...")
		if err := os.Remove("moot.yml"); err != nil {
			return fmt.Errorf("failed to remove moot.yml: %w", err)
		}
	}

	return nil
}

// getTemplateFiles reads and processes all template files
func getTemplateFiles() ([]FileInfo, error) {
	mootYml, err := templatesFS.ReadFile("templates/moot.yml.tmpl")
	if err != nil {
		return nil, fmt.Errorf("failed to read moot.yml template: %w", err)
	}

	return []FileInfo{
		{
			Path:        "moot.yml",
			Content:     mootYml,
			Permissions: 0644,
		},
	}, nil
}

// writeFiles writes all template files to disk
func writeFiles(files []FileInfo) error {
	for _, file := range files {
		if err := os.WriteFile(file.Path, file.Content, file.Permissions); err != nil {
			return fmt.Errorf("failed to write %s: %w", file.Path, err)
		}
	}

	return nil
}

// validateCreatedFiles loads the created moot.yml through the config package
// so a broken template is caught here rather than on the first solve.
func validateCreatedFiles() error {
	if _, err := config.Load("moot.yml"); err != nil {
		return fmt.Errorf("created moot.yml failed validation: %w", err)
	}

	return nil
}

// ensureGitignore adds the trace directory entry to .gitignore, creating the
// file when missing. An entry that is already present is left alone.
func ensureGitignore() error {
	content, err := os.ReadFile(".gitignore")
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to read .gitignore: %w", err)
	}

	for _, line := range strings.Split(string(content), "\n") {
		if strings.TrimSpace(line) == GitignoreEntry {
			return nil
		}
	}

	out := string(content)
	if out != "" && !strings.HasSuffix(out, "\n") {
		out += "\n"
	}
	out += GitignoreEntry + "\n"

	if err := os.WriteFile(".gitignore", []byte(out), 0644); err != nil {
		return fmt.Errorf("failed to update .gitignore: %w", err)
	}

	return nil
}

// PrintSuccess prints the success message with created files
func PrintSuccess() {
	fmt.Println("\n✅ Successfully initialized Moot project!")
	fmt.Println("\nCreated:")
	fmt.Println("  ✓ moot.yml")
	fmt.Println("  ✓ .gitignore entry: " + GitignoreEntry)
	fmt.Println("\nNext steps:")
	fmt.Println("  1. Start Redis: docker run -d -p 6379:6379 redis:7-alpine")
	fmt.Println("  2. Customize moot.yml to pick your models and agent pool")
	fmt.Println("  3. Run 'moot solve \"your problem\"' to start a deliberation")
}
