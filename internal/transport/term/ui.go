package term

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"quizdesk/internal/app"
	"quizdesk/internal/domain"
)

// errQuit signals a deliberate exit from the command loop.
var errQuit = errors.New("quit")

// UI is the line-oriented terminal front-end. It renders whichever screen the
// router says is active, feeds user commands back into the router and engine,
// and answers confirmation prompts, so it doubles as the app.Confirmer.
type UI struct {
	in  io.Reader
	out io.Writer
	log *zap.Logger

	router *app.Router
	lines  chan string
	player string
}

func New(in io.Reader, out io.Writer, log *zap.Logger) *UI {
	if log == nil {
		log = zap.NewNop()
	}
	return &UI{in: in, out: out, log: log}
}

// Confirm prints the prompt and reads a y/n line. Anything but an explicit
// yes declines.
func (u *UI) Confirm(prompt string) bool {
	fmt.Fprintf(u.out, "%s [y/N]: ", prompt)
	line, ok := <-u.lines
	if !ok {
		return false
	}
	line = strings.ToLower(strings.TrimSpace(line))
	return line == "y" || line == "yes"
}

// Run drives the screens until the user quits, input ends, or ctx is
// canceled.
func (u *UI) Run(ctx context.Context, router *app.Router, playerName string) error {
	u.router = router
	u.lines = make(chan string)

	// Reads from stdin cannot be interrupted, so the reader is not joined; it
	// exits on EOF and is abandoned when Run returns.
	go func() {
		defer close(u.lines)
		scanner := bufio.NewScanner(u.in)
		for scanner.Scan() {
			select {
			case u.lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	if err := u.greet(ctx, playerName); err != nil {
		return exitErr(err)
	}
	return exitErr(u.loop(ctx))
}

func exitErr(err error) error {
	if errors.Is(err, errQuit) || errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

// greet captures the player's display name. No credentials, just a label.
func (u *UI) greet(ctx context.Context, playerName string) error {
	if playerName == "" {
		fmt.Fprint(u.out, "Who is playing? ")
		line, err := u.nextLine(ctx)
		if err != nil {
			return err
		}
		playerName = strings.TrimSpace(line)
		if playerName == "" {
			playerName = "player"
		}
	}
	u.player = playerName
	fmt.Fprintf(u.out, "Welcome, %s.\n\n", playerName)
	return nil
}

func (u *UI) loop(ctx context.Context) error {
	for {
		var err error
		switch u.router.Screen() {
		case app.ScreenLibrary:
			err = u.libraryScreen(ctx)
		case app.ScreenEdit:
			err = u.editScreen(ctx)
		case app.ScreenTake:
			err = u.takeScreen(ctx)
		case app.ScreenResults:
			err = u.resultsScreen(ctx)
		}
		if err != nil {
			return err
		}
	}
}

func (u *UI) nextLine(ctx context.Context) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case line, ok := <-u.lines:
		if !ok {
			return "", io.EOF
		}
		return line, nil
	}
}

// libraryScreen renders the collection and handles one command.
func (u *UI) libraryScreen(ctx context.Context) error {
	quizzes, err := u.router.Library(ctx)
	if err != nil {
		return err
	}
	renderLibrary(u.out, quizzes, u.router.Notice())

	line, err := u.nextLine(ctx)
	if err != nil {
		return err
	}
	cmd, arg := splitCommand(line)
	switch cmd {
	case "":
	case "new":
		u.router.NewQuiz()
	case "take":
		if id, ok := quizAt(quizzes, arg); ok {
			_ = u.router.StartSession(ctx, id) // failures surface as a notice
		} else {
			fmt.Fprintln(u.out, "Usage: take <number>")
		}
	case "edit":
		if id, ok := quizAt(quizzes, arg); ok {
			if _, err := u.router.OpenEditor(ctx, id); err != nil {
				fmt.Fprintln(u.out, err)
			}
		} else {
			fmt.Fprintln(u.out, "Usage: edit <number>")
		}
	case "delete":
		if id, ok := quizAt(quizzes, arg); ok {
			if _, err := u.router.DeleteQuiz(ctx, id); err != nil {
				fmt.Fprintln(u.out, err)
			}
		} else {
			fmt.Fprintln(u.out, "Usage: delete <number>")
		}
	case "history":
		results, err := u.router.History(ctx, 10)
		if err != nil {
			fmt.Fprintln(u.out, err)
			break
		}
		renderHistory(u.out, results)
	case "quit", "q", "exit":
		return errQuit
	default:
		fmt.Fprintln(u.out, "Commands: take <n>, new, edit <n>, delete <n>, history, quit")
	}
	return nil
}

// editScreen renders the working copy and handles one command.
func (u *UI) editScreen(ctx context.Context) error {
	editor := u.router.Editor()
	if editor == nil {
		return nil
	}
	renderQuiz(u.out, editor.Quiz())

	line, err := u.nextLine(ctx)
	if err != nil {
		return err
	}
	cmd, arg := splitCommand(line)
	switch cmd {
	case "", "show":
	case "title":
		editor.SetTitle(arg)
	case "desc":
		editor.SetDescription(arg)
	case "time":
		if n, err := strconv.Atoi(arg); err == nil {
			editor.SetTimePerQuestion(n)
		} else {
			fmt.Fprintln(u.out, "Usage: time <seconds>")
		}
	case "addq":
		editor.AddQuestion(arg)
	case "delq":
		u.editIndexed(arg, editor.RemoveQuestion)
	case "text":
		q, rest, ok := splitIndex(arg)
		if !ok {
			fmt.Fprintln(u.out, "Usage: text <question> <new text>")
			break
		}
		u.printErr(editor.SetQuestionText(q, rest))
	case "addc":
		q, rest, ok := splitIndex(arg)
		if !ok {
			fmt.Fprintln(u.out, "Usage: addc <question> <choice text>")
			break
		}
		u.printErr(editor.AddChoice(q, rest))
	case "setc":
		q, rest, ok := splitIndex(arg)
		c, text, ok2 := splitIndex(rest)
		if !ok || !ok2 {
			fmt.Fprintln(u.out, "Usage: setc <question> <choice> <text>")
			break
		}
		u.printErr(editor.SetChoice(q, c, text))
	case "delc":
		q, rest, ok := splitIndex(arg)
		c, err2 := strconv.Atoi(strings.TrimSpace(rest))
		if !ok || err2 != nil {
			fmt.Fprintln(u.out, "Usage: delc <question> <choice>")
			break
		}
		u.printErr(editor.RemoveChoice(q, c-1))
	case "answer":
		q, rest, ok := splitIndex(arg)
		c, err2 := strconv.Atoi(strings.TrimSpace(rest))
		if !ok || err2 != nil {
			fmt.Fprintln(u.out, "Usage: answer <question> <choice>")
			break
		}
		u.printErr(editor.SetAnswerIndex(q, c-1))
	case "save":
		if err := u.router.SaveEditor(ctx); err != nil {
			fmt.Fprintln(u.out, err)
		}
	case "cancel", "back":
		u.router.CloseEditor()
	case "quit", "q":
		return errQuit
	default:
		fmt.Fprintln(u.out, "Commands: title, desc, time, addq, delq, text, addc, setc, delc, answer, save, cancel")
	}
	return nil
}

// takeScreen runs one session: a renderer goroutine follows engine snapshots
// while the command loop feeds answers in. Both sides finish when the session
// ends, whichever way it ends.
func (u *UI) takeScreen(ctx context.Context) error {
	engine := u.router.Engine()
	if engine == nil {
		return nil
	}
	snaps, cancelSub := engine.Subscribe()
	done := u.router.SessionDone()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		u.renderCountdown(snaps)
		return nil
	})
	g.Go(func() error {
		defer cancelSub()
		return u.takeCommands(gctx, engine, done)
	})
	return g.Wait()
}

func (u *UI) takeCommands(ctx context.Context, engine *app.Engine, done <-chan struct{}) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-done:
			// The countdown finished the session while we waited for input.
			return nil
		case line, ok := <-u.lines:
			if !ok {
				return io.EOF
			}
			if err := u.handleTakeCommand(line, engine); err != nil {
				return err
			}
			if u.router.Screen() != app.ScreenTake {
				return nil
			}
		}
	}
}

func (u *UI) handleTakeCommand(line string, engine *app.Engine) error {
	cmd, _ := splitCommand(line)
	if n, err := strconv.Atoi(cmd); err == nil {
		if err := engine.SelectChoice(n - 1); err != nil {
			fmt.Fprintln(u.out, "No such choice.")
		}
		return nil
	}
	switch cmd {
	case "", "help":
		fmt.Fprintln(u.out, "Answer with a choice number; n=next, b=back, f=finish, q=quit")
	case "n", "next":
		engine.Advance(false)
	case "b", "back":
		engine.Retreat()
	case "f", "finish":
		if _, err := u.router.FinishSession(); err != nil {
			fmt.Fprintln(u.out, err)
		}
	case "q", "quit":
		u.router.QuitSession()
	default:
		fmt.Fprintln(u.out, "Answer with a choice number; n=next, b=back, f=finish, q=quit")
	}
	return nil
}

// renderCountdown prints each question as it becomes current and a short
// time-left reminder as the countdown runs down.
func (u *UI) renderCountdown(snaps <-chan app.Snapshot) {
	lastIndex := -1
	for snap := range snaps {
		switch snap.Status {
		case app.StatusActive:
			if snap.Index != lastIndex {
				lastIndex = snap.Index
				renderQuestion(u.out, snap)
			} else if snap.Remaining <= 5 || snap.Remaining%10 == 0 {
				fmt.Fprintf(u.out, "  ... %ds left\n", snap.Remaining)
			}
		case app.StatusCompleted:
			fmt.Fprintln(u.out, "Session complete.")
		}
	}
}

// resultsScreen shows the scored outcome and waits for one line before
// returning to the library.
func (u *UI) resultsScreen(ctx context.Context) error {
	if result, ok := u.router.LastResult(); ok {
		renderResult(u.out, result)
	}
	fmt.Fprintln(u.out, "Press enter to return to the library.")
	if _, err := u.nextLine(ctx); err != nil {
		return err
	}
	_, err := u.router.Library(ctx)
	return err
}

func (u *UI) editIndexed(arg string, fn func(int) error) {
	n, err := strconv.Atoi(strings.TrimSpace(arg))
	if err != nil {
		fmt.Fprintln(u.out, "Expected a question number.")
		return
	}
	u.printErr(fn(n - 1))
}

func (u *UI) printErr(err error) {
	if err != nil {
		fmt.Fprintln(u.out, err)
	}
}

func splitCommand(line string) (cmd, arg string) {
	line = strings.TrimSpace(line)
	if i := strings.IndexByte(line, ' '); i >= 0 {
		return strings.ToLower(line[:i]), strings.TrimSpace(line[i+1:])
	}
	return strings.ToLower(line), ""
}

// splitIndex parses a leading 1-based index and returns it 0-based with the
// remainder of the line.
func splitIndex(arg string) (int, string, bool) {
	arg = strings.TrimSpace(arg)
	i := strings.IndexByte(arg, ' ')
	head, rest := arg, ""
	if i >= 0 {
		head, rest = arg[:i], strings.TrimSpace(arg[i+1:])
	}
	n, err := strconv.Atoi(head)
	if err != nil {
		return 0, "", false
	}
	return n - 1, rest, true
}

func quizAt(quizzes []domain.Quiz, arg string) (string, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(arg))
	if err != nil || n < 1 || n > len(quizzes) {
		return "", false
	}
	return quizzes[n-1].ID, true
}
