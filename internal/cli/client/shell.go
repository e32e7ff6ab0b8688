package client

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cloo-solutions/sentisearch/internal/domain"
	"github.com/cloo-solutions/sentisearch/internal/session"
)

const shellHelp = `Commands:
  search <query>         search (a line without a command also searches)
  tab <name>             show results, favorites, history or photos
  replay <n>             run history entry n again
  fav <n>                save result n
  unfav <url>            remove a favorite
  up <n> / down <n>      judge result n
  download <n> [dir]     save result n
  photo add <path>       add a photo to every search
  photo rm <n>           remove photo n
  camera open|capture|close
  listen                 search by voice
  intro                  dismiss the intro
  help, quit`

// ShellCmd creates the interactive shell command.
func ShellCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Interactive session",
		Long:  "Runs a long-lived session where results stay addressable by index.",
		Args:  cobra.NoArgs,
		RunE:  runShell,
	}
}

func runShell(cmd *cobra.Command, args []string) error {
	rt, err := openRuntime(cmd, nil)
	if err != nil {
		return err
	}
	defer rt.Close()

	ctx, cancel := context.WithCancel(rt.ctx)
	defer cancel()

	go func() {
		if err := rt.session.Store().Watch(ctx); err != nil {
			rt.logger.Warn().Err(err).Msg("store watch stopped")
		}
	}()

	rt.session.Start(ctx)
	sh := &shell{session: rt.session, out: rt.out}
	return sh.run(ctx, cmd.InOrStdin())
}

type shell struct {
	session *session.Session
	out     io.Writer
}

var errQuit = errors.New("quit")

func (s *shell) run(ctx context.Context, in io.Reader) error {
	scanner := bufio.NewScanner(in)
	fmt.Fprint(s.out, "> ")
	for scanner.Scan() {
		err := s.exec(ctx, scanner.Text())
		if errors.Is(err, errQuit) {
			return nil
		}
		if err != nil && !shownByRenderer(err) {
			fmt.Fprintln(s.out, err.Error())
		}
		fmt.Fprint(s.out, "> ")
	}
	return scanner.Err()
}

// shownByRenderer reports whether the session already notified the user about
// err. Lookups and state errors are returned silently.
func shownByRenderer(err error) bool {
	var usage usageError
	if errors.As(err, &usage) {
		return false
	}
	switch domain.CodeOf(err) {
	case domain.ErrCodeNotFound, domain.ErrCodeInvalidState, domain.ErrCodeSearchInFlight:
		return false
	case "":
		return false
	}
	return true
}

type usageError string

func (e usageError) Error() string { return string(e) }

func (s *shell) exec(ctx context.Context, line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}
	rest := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), fields[0]))

	switch fields[0] {
	case "quit", "exit":
		return errQuit
	case "help":
		fmt.Fprintln(s.out, shellHelp)
		return nil
	case "search":
		_, err := s.session.Search(ctx, rest, nil)
		return err
	case "tab":
		return s.session.ShowTab(ctx, rest)
	case "replay":
		n, err := shellIndex(fields, 1)
		if err != nil {
			return err
		}
		_, err = s.session.Replay(ctx, n)
		return err
	case "fav":
		n, err := shellIndex(fields, 1)
		if err != nil {
			return err
		}
		_, err = s.session.Favorite(ctx, n)
		return err
	case "unfav":
		if rest == "" {
			return usageError("usage: unfav <url>")
		}
		_, err := s.session.Unfavorite(ctx, rest)
		return err
	case "up", "down":
		n, err := shellIndex(fields, 1)
		if err != nil {
			return err
		}
		return s.session.Feedback(ctx, n, fields[0] == "up")
	case "download":
		n, err := shellIndex(fields, 1)
		if err != nil {
			return err
		}
		dir := "."
		if len(fields) > 2 {
			dir = fields[2]
		}
		_, err = s.session.Download(ctx, n, dir)
		return err
	case "photo":
		return s.photo(ctx, fields)
	case "camera":
		return s.camera(ctx, fields)
	case "listen":
		return s.session.Listen(ctx)
	case "intro":
		return s.session.DismissIntro(ctx)
	default:
		_, err := s.session.Search(ctx, line, nil)
		return err
	}
}

func (s *shell) photo(ctx context.Context, fields []string) error {
	if len(fields) < 3 {
		return usageError("usage: photo add <path> | photo rm <n>")
	}
	switch fields[1] {
	case "add":
		_, err := s.session.AddPhoto(ctx, fields[2])
		return err
	case "rm", "remove":
		n, err := shellIndex(fields, 2)
		if err != nil {
			return err
		}
		_, err = s.session.RemovePhotoAt(ctx, n)
		return err
	default:
		return usageError("usage: photo add <path> | photo rm <n>")
	}
}

func (s *shell) camera(ctx context.Context, fields []string) error {
	if len(fields) < 2 {
		return usageError("usage: camera open|capture|close")
	}
	switch fields[1] {
	case "open":
		return s.session.OpenCamera(ctx)
	case "capture":
		return s.session.Capture(ctx)
	case "close":
		s.session.CloseCamera()
		return nil
	default:
		return usageError("usage: camera open|capture|close")
	}
}

func shellIndex(fields []string, pos int) (int, error) {
	if len(fields) <= pos {
		return 0, usageError("usage: " + fields[0] + " <n>")
	}
	n, err := strconv.Atoi(fields[pos])
	if err != nil || n < 0 {
		return 0, usageError(fmt.Sprintf("invalid index %q", fields[pos]))
	}
	return n, nil
}
