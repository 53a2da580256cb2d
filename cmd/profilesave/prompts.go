package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"

	"github.com/killo431/profilesave/internal/backup"
	"github.com/killo431/profilesave/internal/input"
)

// promptSelectTargets renders a numbered profile list on stderr and reads a
// selection: "all", a comma-separated list of numbers, or profile names.
// An empty answer selects everything.
func promptSelectTargets(ctx context.Context, reader *bufio.Reader, targets []backup.Target) ([]backup.Target, error) {
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Available profiles:")
	for i, t := range targets {
		fmt.Fprintf(os.Stderr, "  %2d) %s\n", i+1, t.Name)
	}
	fmt.Fprint(os.Stderr, "Select profiles (all / numbers / names, comma-separated) [all]: ")

	line, err := input.ReadLineWithContext(ctx, reader)
	if err != nil {
		return nil, err
	}
	answer := strings.TrimSpace(line)
	if answer == "" || strings.EqualFold(answer, "all") {
		return targets, nil
	}

	var selected []backup.Target
	seen := make(map[string]bool, len(targets))
	for _, tok := range strings.Split(answer, ",") {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		t, ok := resolveToken(tok, targets)
		if !ok {
			return nil, fmt.Errorf("unknown profile %q", tok)
		}
		if !seen[t.Name] {
			seen[t.Name] = true
			selected = append(selected, t)
		}
	}
	if len(selected) == 0 {
		return nil, fmt.Errorf("no profiles selected")
	}
	return selected, nil
}

func resolveToken(tok string, targets []backup.Target) (backup.Target, bool) {
	if n, err := strconv.Atoi(tok); err == nil {
		if n >= 1 && n <= len(targets) {
			return targets[n-1], true
		}
		return backup.Target{}, false
	}
	for _, t := range targets {
		if strings.EqualFold(t.Name, tok) {
			return t, true
		}
	}
	return backup.Target{}, false
}

// promptYesNo asks a yes/no question; an empty answer takes the default.
func promptYesNo(ctx context.Context, reader *bufio.Reader, question string, def bool) (bool, error) {
	hint := "Y/n"
	if !def {
		hint = "y/N"
	}
	fmt.Fprintf(os.Stderr, "%s [%s]: ", question, hint)

	line, err := input.ReadLineWithContext(ctx, reader)
	if err != nil {
		return false, err
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "":
		return def, nil
	case "y", "yes":
		return true, nil
	case "n", "no":
		return false, nil
	default:
		return def, nil
	}
}

// promptPassphrase reads the archive passphrase without echo, asking twice
// for confirmation. Falls back to plain line input when stdin is not a
// terminal (piped invocations).
func promptPassphrase(ctx context.Context, reader *bufio.Reader) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		fmt.Fprint(os.Stderr, "Archive passphrase: ")
		line, err := input.ReadLineWithContext(ctx, reader)
		if err != nil {
			return "", err
		}
		pass := strings.TrimRight(line, "\r\n")
		if pass == "" {
			return "", fmt.Errorf("empty passphrase")
		}
		return pass, nil
	}

	fmt.Fprint(os.Stderr, "Archive passphrase: ")
	first, err := input.ReadPasswordWithContext(ctx, term.ReadPassword, fd)
	fmt.Fprintln(os.Stderr, "")
	if err != nil {
		return "", err
	}
	fmt.Fprint(os.Stderr, "Confirm passphrase: ")
	second, err := input.ReadPasswordWithContext(ctx, term.ReadPassword, fd)
	fmt.Fprintln(os.Stderr, "")
	if err != nil {
		return "", err
	}

	if string(first) != string(second) {
		return "", fmt.Errorf("passphrases do not match")
	}
	if len(first) == 0 {
		return "", fmt.Errorf("empty passphrase")
	}
	return string(first), nil
}
