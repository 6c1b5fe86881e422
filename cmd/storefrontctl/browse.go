package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/utafrali/storefront/internal/overlay"
)

const backdropTarget = "backdrop"

const browseHelp = `commands:
  open product <id>   show a product overlay
  open cart           show the cart overlay
  close               close the overlay
  esc | key <name>    press a key
  click <target>      click an element ("backdrop" dismisses)
  scroll <y>          scroll the page
  go <url>            navigate to a URL (new history entry)
  back | forward      move through history
  add <qty>           add the displayed product to the cart
  qty <line> <n>      change a cart line quantity
  rm <line>           remove a cart line
  show                print the current page
  help                this text
  quit                leave`

// browseSession is one simulated page with an overlay on top of it.
type browseSession struct {
	hist     *overlay.History
	viewport *overlay.MemoryViewport
	ctrl     *overlay.Controller
	keys     *overlay.KeyBus
	dismiss  *overlay.Dismisser
	renderer *overlay.Renderer
}

func (s *browseSession) close() {
	s.dismiss.Stop()
	s.renderer.Close()
	s.ctrl.Stop()
}

func newBrowseCmd(c *cli) *cobra.Command {
	var (
		startURL string
		session  string
	)

	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Drive the overlay controller interactively against the storefront",
		Long: `browse simulates a page whose overlay follows the modal and id query
parameters. Commands are read one per line from stdin; type "help" for the list.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if session == "" {
				session = uuid.NewString()
			}

			store, release, err := c.scrollStore(ctx)
			if err != nil {
				return err
			}
			defer release()

			hist, err := overlay.ParseHistory(startURL)
			if err != nil {
				return fmt.Errorf("parse start url: %w", err)
			}
			s := &browseSession{
				hist:     hist,
				viewport: overlay.NewMemoryViewport(0),
				keys:     overlay.NewKeyBus(),
			}
			s.ctrl = overlay.NewController(s.hist, s.viewport,
				overlay.WithScrollStore(store),
				overlay.WithScrollKey("browse:"+session),
				overlay.WithLogger(c.logger),
			)
			s.dismiss = overlay.NewDismisser(s.ctrl, s.keys)
			s.renderer = overlay.NewRenderer(s.ctrl, c.api,
				overlay.WithRendererLogger(c.logger),
				overlay.WithFetchTimeout(c.cfg.Timeout),
			)
			defer s.close()

			c.logger.Debug("browse session started", "session", session, "url", startURL)
			return s.run(ctx, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&startURL, "url", "/", "page URL to start from")
	cmd.Flags().StringVar(&session, "session", "", "session id for stored scroll offsets (default random)")
	return cmd
}

func (s *browseSession) run(ctx context.Context, in io.Reader, out io.Writer) error {
	s.renderer.Wait()
	s.print(out)

	sc := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, dimStyle.Render("> "))
		if !sc.Scan() {
			fmt.Fprintln(out)
			return sc.Err()
		}
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}

		quit, err := s.exec(ctx, out, fields)
		if quit {
			return nil
		}
		s.renderer.Wait()
		if err != nil {
			printError(out, err)
			continue
		}
		s.print(out)
	}
}

func (s *browseSession) exec(ctx context.Context, out io.Writer, f []string) (quit bool, err error) {
	switch cmd, args := f[0], f[1:]; cmd {
	case "quit", "exit":
		return true, nil
	case "help":
		fmt.Fprintln(out, browseHelp)
	case "show":
	case "open":
		if len(args) == 0 {
			return false, fmt.Errorf("usage: open product <id> | open cart")
		}
		var target string
		if len(args) > 1 {
			target = args[1]
		}
		_, err = s.ctrl.Open(ctx, overlay.Kind(args[0]), target)
	case "close":
		s.ctrl.Close(ctx)
	case "esc":
		s.keys.Press(overlay.KeyEscape)
	case "key":
		if len(args) != 1 {
			return false, fmt.Errorf("usage: key <name>")
		}
		s.keys.Press(args[0])
	case "click":
		if len(args) != 1 {
			return false, fmt.Errorf("usage: click <target>")
		}
		s.dismiss.Backdrop(ctx, args[0], backdropTarget)
	case "scroll":
		y, perr := intArg(args, "usage: scroll <y>")
		if perr != nil {
			return false, perr
		}
		s.viewport.ScrollTo(y)
	case "go":
		if len(args) != 1 {
			return false, fmt.Errorf("usage: go <url>")
		}
		u, perr := url.Parse(args[0])
		if perr != nil {
			return false, fmt.Errorf("parse url: %w", perr)
		}
		s.hist.Push(u)
	case "back":
		if !s.hist.Back() {
			return false, fmt.Errorf("no previous page")
		}
	case "forward":
		if !s.hist.Forward() {
			return false, fmt.Errorf("no next page")
		}
	case "add":
		qty, perr := intArg(args, "usage: add <qty>")
		if perr != nil {
			return false, perr
		}
		it, aerr := s.renderer.AddToCart(ctx, qty)
		if aerr != nil {
			return false, aerr
		}
		fmt.Fprintf(out, "added %d x %s (line %s)\n", qty, it.Name, it.ID)
	case "qty":
		if len(args) != 2 {
			return false, fmt.Errorf("usage: qty <line> <n>")
		}
		n, perr := strconv.Atoi(args[1])
		if perr != nil {
			return false, fmt.Errorf("invalid quantity %q", args[1])
		}
		err = s.renderer.UpdateQuantity(ctx, args[0], n)
	case "rm":
		if len(args) != 1 {
			return false, fmt.Errorf("usage: rm <line>")
		}
		err = s.renderer.RemoveItem(ctx, args[0])
	default:
		return false, fmt.Errorf("unknown command %q, try help", cmd)
	}
	return false, err
}

func (s *browseSession) print(out io.Writer) {
	fmt.Fprintf(out, "page %s\n", s.hist.Location())
	fmt.Fprintln(out, dimStyle.Render(fmt.Sprintf("scroll %d", s.viewport.ScrollY())))
	printResolution(out, overlay.NewResolution(s.renderer.View()))
}

func intArg(args []string, usage string) (int, error) {
	if len(args) != 1 {
		return 0, errors.New(usage)
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		return 0, fmt.Errorf("invalid number %q", args[0])
	}
	return n, nil
}
