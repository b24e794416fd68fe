package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/aretw0/arbor"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/charmbracelet/glamour"
	"github.com/google/uuid"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Walk the journey interactively in the terminal",
	RunE: func(cmd *cobra.Command, args []string) error {
		file, _ := cmd.Flags().GetString("file")

		wizard, err := arbor.NewFromFile(file)
		if err != nil {
			return err
		}

		current, err := entryPoint(wizard.Steps())
		if err != nil {
			return err
		}

		renderer, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(80),
		)
		if err != nil {
			return err
		}

		output := termenv.NewOutput(os.Stdout)
		journey := domain.NewJourney(uuid.NewString())
		reader := bufio.NewReader(os.Stdin)
		ctx := cmd.Context()

		for current != "" {
			if domain.IsExternal(current) {
				fmt.Printf("\nContinue at: %s\n", current)
				return nil
			}

			step := wizard.Steps()[current]
			if step == nil {
				return fmt.Errorf("journey references unknown step %s", current)
			}

			printBanner(output, step)
			if step.Content != "" {
				md, err := renderer.Render(step.Content)
				if err != nil {
					return err
				}
				fmt.Print(md)
			}

			if err := wizard.Enter(ctx, journey, current); err != nil {
				return err
			}

			if step.NoPost || len(step.Fields) == 0 {
				// Enter completed link-only steps already; field-less form
				// steps submit an empty payload.
				if !journey.Visited(current) {
					if _, _, err := wizard.Submit(ctx, journey, current, nil); err != nil {
						return err
					}
				}
				last := journey.Last()
				if last == nil {
					return nil
				}
				current = last.Next
				continue
			}

			next, err := promptStep(ctx, wizard, journey, step, reader, output)
			if err != nil {
				return err
			}
			current = next
		}

		fmt.Println(output.String("Journey complete.").Bold())
		return nil
	},
}

// promptStep collects the step's fields from stdin and submits, repeating
// until the submission validates.
func promptStep(ctx context.Context, wizard *arbor.Wizard, journey *domain.Journey, step *domain.Step, reader *bufio.Reader, output *termenv.Output) (string, error) {
	keys := make([]string, len(step.Fields))
	copy(keys, step.Fields)
	sort.Strings(keys)

	for {
		values := make(map[string]any, len(keys))
		for _, key := range keys {
			fmt.Printf("%s: ", output.String(key).Foreground(output.Color("6")))
			line, err := reader.ReadString('\n')
			if err != nil {
				return "", err
			}
			values[key] = strings.TrimSpace(line)
		}

		failures, next, err := wizard.Submit(ctx, journey, step.Path, values)
		if err != nil {
			return "", err
		}
		if len(failures) == 0 {
			return next, nil
		}

		for _, failure := range failures {
			msg := fmt.Sprintf("%s failed %s validation", failure.Key, failure.Type)
			fmt.Println(output.String(msg).Foreground(output.Color("1")))
		}
		fmt.Println()
	}
}

func printBanner(output *termenv.Output, step *domain.Step) {
	title := step.Path
	if step.Title != "" {
		title = step.Title
	}
	fmt.Println()
	fmt.Println(output.String(title).Bold().Underline())
}

// entryPoint returns the first entry-point step in path order.
func entryPoint(steps domain.Steps) (string, error) {
	var paths []string
	for path, step := range steps {
		if step.EntryPoint {
			paths = append(paths, path)
		}
	}
	if len(paths) == 0 {
		return "", fmt.Errorf("journey has no entry point step")
	}
	sort.Strings(paths)
	return paths[0], nil
}

func init() {
	rootCmd.AddCommand(runCmd)
}
