package eqlog

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ccollicutt/logseek/pkg/parser"
)

// LogsDirectory is where the client writes logs, relative to the install.
const LogsDirectory = "Logs"

// Server names accepted by LogFileName.
const (
	ServerBlue  = "blue"
	ServerGreen = "green"
	ServerRed   = "red"
)

var serverSuffixes = map[string]string{
	ServerBlue:  "project1999",
	ServerGreen: "P1999Green",
	ServerRed:   "P1999PVP",
}

// Character is a log file found in an install directory.
type Character struct {
	Name   string
	Server string
	Path   string
}

// LogFileName returns the file name the client uses for a character's log.
func LogFileName(server, character string) (string, error) {
	suffix, ok := serverSuffixes[server]
	if !ok {
		return "", fmt.Errorf("unknown server %q (must be blue, green, or red)", server)
	}
	if character == "" {
		return "", fmt.Errorf("character name is required")
	}
	return "eqlog_" + character + "_" + suffix + ".txt", nil
}

// ResolvePath returns the full path of a character's log under installDir.
func ResolvePath(installDir, server, character string) (string, error) {
	name, err := LogFileName(server, character)
	if err != nil {
		return "", err
	}
	return filepath.Join(installDir, LogsDirectory, name), nil
}

// Discover lists every character log in installDir, sorted by path.
func Discover(installDir string) ([]Character, error) {
	servers := make([]string, 0, len(serverSuffixes))
	for server := range serverSuffixes {
		servers = append(servers, server)
	}
	sort.Strings(servers)

	patterns := make([]string, 0, len(servers))
	for _, server := range servers {
		patterns = append(patterns,
			filepath.Join(installDir, LogsDirectory, "eqlog_*_"+serverSuffixes[server]+".txt"))
	}

	paths, err := parser.MatchGlobs(patterns)
	if err != nil {
		return nil, fmt.Errorf("listing logs in %s: %w", installDir, err)
	}

	characters := make([]Character, 0, len(paths))
	for _, path := range paths {
		if c, ok := parseFileName(path); ok {
			characters = append(characters, c)
		}
	}
	return characters, nil
}

func parseFileName(path string) (Character, bool) {
	base := strings.TrimSuffix(filepath.Base(path), ".txt")
	rest, ok := strings.CutPrefix(base, "eqlog_")
	if !ok {
		return Character{}, false
	}
	for server, suffix := range serverSuffixes {
		if name, ok := strings.CutSuffix(rest, "_"+suffix); ok && name != "" {
			return Character{Name: name, Server: server, Path: path}, true
		}
	}
	return Character{}, false
}
