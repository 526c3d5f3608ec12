package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"strings"

	"github.com/google/shlex"

	"github.com/runger/rpick/internal/listctl"
)

var errEmptyCommand = errors.New("on_select command is empty")

// buildOnSelect splits template into argv and fills the {id}, {name},
// {project} and {source} placeholders in each argument. Splitting happens
// first so a name with spaces stays a single argument.
func buildOnSelect(template string, item listctl.Item, project, source string) ([]string, error) {
	args, err := shlex.Split(template)
	if err != nil {
		return nil, fmt.Errorf("parse on_select command: %w", err)
	}
	if len(args) == 0 {
		return nil, errEmptyCommand
	}

	r := strings.NewReplacer(
		"{id}", strconv.FormatInt(item.ID, 10),
		"{name}", item.Name,
		"{project}", project,
		"{source}", source,
	)
	for i, a := range args {
		args[i] = r.Replace(a)
	}
	return args, nil
}

// runOnSelect runs argv with the given stdio and waits for it.
func runOnSelect(ctx context.Context, argv []string, stdout, stderr io.Writer) error {
	c := exec.CommandContext(ctx, argv[0], argv[1:]...) //nolint:gosec // G204: command comes from the user's own config or flag
	c.Stdout = stdout
	c.Stderr = stderr
	if err := c.Run(); err != nil {
		return fmt.Errorf("on_select %s: %w", argv[0], err)
	}
	return nil
}
