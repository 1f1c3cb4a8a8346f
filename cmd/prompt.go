package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/teemow/chattools/internal/events"
)

// terminalPrompter answers input requests on the terminal.
type terminalPrompter struct {
	in  *bufio.Reader
	out io.Writer

	// pending is a line read still in flight after a canceled prompt. The
	// next prompt takes its result instead of starting a second reader.
	pending chan lineResult
}

type lineResult struct {
	line string
	err  error
}

func newTerminalPrompter(in io.Reader, out io.Writer) *terminalPrompter {
	return &terminalPrompter{in: bufio.NewReader(in), out: out}
}

// Prompt implements events.PromptSink. Confirmations accept y/yes and
// default to no.
func (p *terminalPrompter) Prompt(ctx context.Context, req events.InputRequest) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	if req.Title != "" {
		fmt.Fprintf(p.out, "%s\n", req.Title)
	}
	confirm := req.Type == events.RequestConfirmation || req.Type == events.RequestExecute
	switch {
	case confirm:
		fmt.Fprintf(p.out, "%s [y/N]: ", req.Message)
	case req.Placeholder != "":
		fmt.Fprintf(p.out, "%s [%s]: ", req.Message, req.Placeholder)
	default:
		fmt.Fprintf(p.out, "%s: ", req.Message)
	}

	line, err := p.readLine(ctx)
	if err != nil {
		return "", err
	}

	if !confirm {
		return line, nil
	}
	switch strings.ToLower(line) {
	case "y", "yes":
		return strconv.FormatBool(true), nil
	default:
		return strconv.FormatBool(false), nil
	}
}

// readLine returns the next trimmed line, or ctx.Err() when ctx is done first.
func (p *terminalPrompter) readLine(ctx context.Context) (string, error) {
	if p.pending == nil {
		ch := make(chan lineResult, 1)
		go func() {
			line, err := p.in.ReadString('\n')
			ch <- lineResult{line: line, err: err}
		}()
		p.pending = ch
	}

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-p.pending:
		p.pending = nil
		if res.err != nil && !(errors.Is(res.err, io.EOF) && res.line != "") {
			return "", fmt.Errorf("failed to read input: %w", res.err)
		}
		return strings.TrimSpace(res.line), nil
	}
}
