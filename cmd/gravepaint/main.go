package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/gravepaint/gravepaint"
	"github.com/gravepaint/gravepaint/api"
	"github.com/gravepaint/gravepaint/app"
	"github.com/gravepaint/gravepaint/identity"
	"golang.org/x/term"
)

const cliTimeout = 20 * time.Second

var errUsage = errors.New("usage")

func main() {
	log.SetFlags(0)

	err := run(os.Args[1:], os.Stdout)
	if errors.Is(err, errUsage) {
		fmt.Fprintln(os.Stderr, err)
		fmt.Fprintln(os.Stderr)
		usage(os.Stderr)
		os.Exit(2)
	}

	if err != nil {
		log.Fatal(err)
	}
}

func usage(w io.Writer) {
	fmt.Fprintln(w, `gravepaint - the GravePaint web app and its command line

Usage:
  gravepaint [serve]                       [-config gravepaint.yaml]
  gravepaint login <username> [-register]  [-config gravepaint.yaml]
  gravepaint logout                        [-config gravepaint.yaml]
  gravepaint whoami            [-user id]  [-config gravepaint.yaml]
  gravepaint canvases [-public][-user id]  [-config gravepaint.yaml]
  gravepaint search <query>    [-user id]  [-config gravepaint.yaml]

login remembers the user for this machine in the Redis at REDIS_URL;
-user acts as another user for a single command.

Examples:
  gravepaint
  gravepaint login alice
  gravepaint canvases -public
  gravepaint search "a quiet sea at night"`)
}

func run(args []string, out io.Writer) error {
	if len(args) == 0 {
		return serveCmd(nil)
	}

	switch args[0] {
	case "serve":
		return serveCmd(args[1:])
	case "login":
		return loginCmd(args[1:], out)
	case "logout":
		return logoutCmd(args[1:], out)
	case "whoami":
		return whoamiCmd(args[1:], out)
	case "canvases":
		return canvasesCmd(args[1:], out)
	case "search":
		return searchCmd(args[1:], out)
	case "help", "-h", "-help", "--help":
		usage(out)
		return nil
	default:
		return fmt.Errorf("%w: unknown command %q", errUsage, args[0])
	}
}

// commonFlags are understood by every command.
type commonFlags struct {
	config string
	user   string
}

func newFlagSet(name string, c *commonFlags) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&c.config, "config", "", "path to a YAML config file")
	fs.StringVar(&c.user, "user", "", "act as the user with this ID")

	return fs
}

func parse(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(reorderArgs(args)); err != nil {
		return fmt.Errorf("%w: %s", errUsage, err)
	}

	return nil
}

// reorderArgs moves flags ahead of positional arguments,
// so "search moon -user 7" parses like "search -user 7 moon".
func reorderArgs(args []string) []string {
	var flags, rest []string
	for i := 0; i < len(args); i++ {
		a := args[i]
		if !strings.HasPrefix(a, "-") || a == "-" {
			rest = append(rest, a)
			continue
		}

		flags = append(flags, a)
		if strings.Contains(a, "=") || isBoolFlag(a) {
			continue
		}

		if i+1 < len(args) {
			flags = append(flags, args[i+1])
			i++
		}
	}

	return append(flags, rest...)
}

func isBoolFlag(a string) bool {
	switch strings.TrimLeft(a, "-") {
	case "public", "register":
		return true
	default:
		return false
	}
}

func serveCmd(args []string) error {
	var c commonFlags
	fs := newFlagSet("serve", &c)
	if err := parse(fs, args); err != nil {
		return err
	}

	cfg, err := app.LoadConfig(c.config)
	if err != nil {
		return err
	}

	a, err := app.New(app.WithConfig(cfg))
	if err != nil {
		return err
	}

	return a.Guide()
}

// session is what the commands besides serve work with.
type session struct {
	app   *app.App
	store *identity.RedisStore
}

// newSession loads the config and connects to Redis when REDIS_URL is set.
// The -user flag takes precedence over the user remembered by login.
func newSession(c commonFlags) (*session, error) {
	cfg, err := app.LoadConfig(c.config)
	if err != nil {
		return nil, err
	}

	s := new(session)
	if rc, err := app.NewRedisClient(cfg); err == nil {
		host, _ := os.Hostname()
		s.store, err = identity.NewRedisStore(rc, "gravepaint-cli:"+host)
		if err != nil {
			return nil, err
		}
	}

	s.app, err = app.New(
		app.WithConfig(cfg),
		app.WithIdentity(identity.First(identity.Static(c.user), s.remembered())),
		app.WithOutput(os.Stderr),
	)
	if err != nil {
		return nil, err
	}

	return s, nil
}

func loginCmd(args []string, out io.Writer) error {
	var c commonFlags
	fs := newFlagSet("login", &c)
	register := fs.Bool("register", false, "create the account first")
	if err := parse(fs, args); err != nil {
		return err
	}

	if fs.NArg() < 1 || strings.TrimSpace(fs.Arg(0)) == "" {
		return fmt.Errorf("%w: missing <username>", errUsage)
	}
	username := strings.TrimSpace(fs.Arg(0))

	s, err := newSession(c)
	if err != nil {
		return err
	}

	if s.store == nil {
		return fmt.Errorf("%w: login needs REDIS_URL to remember you", gravepaint.ErrBadConfig)
	}

	pw, err := promptPassword("Password: ")
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), cliTimeout)
	defer cancel()

	call := s.app.Users().Login
	if *register {
		call = s.app.Users().Register
	}

	u, err := call(ctx, username, pw)
	if err != nil {
		return err
	}

	if err := s.store.Set(ctx, u.Identity()); err != nil {
		return fmt.Errorf("remembering %s: %w", u.Username, err)
	}

	fmt.Fprintf(out, "ok: logged in\n  id: %d\n  username: %s\n", u.ID, u.Username)
	return nil
}

func logoutCmd(args []string, out io.Writer) error {
	var c commonFlags
	fs := newFlagSet("logout", &c)
	if err := parse(fs, args); err != nil {
		return err
	}

	s, err := newSession(c)
	if err != nil {
		return err
	}

	if s.store == nil {
		fmt.Fprintln(out, "ok: nobody is remembered without REDIS_URL")
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), cliTimeout)
	defer cancel()

	if err := s.store.Clear(ctx); err != nil {
		return err
	}

	fmt.Fprintln(out, "ok: logged out")
	return nil
}

func whoamiCmd(args []string, out io.Writer) error {
	var c commonFlags
	fs := newFlagSet("whoami", &c)
	if err := parse(fs, args); err != nil {
		return err
	}

	s, err := newSession(c)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), cliTimeout)
	defer cancel()

	u, err := s.app.Users().Info(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "id: %d\nusername: %s\n", u.ID, u.Username)
	return nil
}

func canvasesCmd(args []string, out io.Writer) error {
	var c commonFlags
	fs := newFlagSet("canvases", &c)
	public := fs.Bool("public", false, "list only public canvases")
	if err := parse(fs, args); err != nil {
		return err
	}

	s, err := newSession(c)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), cliTimeout)
	defer cancel()

	list := s.app.Canvases().Load
	if *public {
		list = s.app.Canvases().Public
	}

	cs, err := list(ctx)
	if err != nil {
		return err
	}

	return printCanvases(out, cs)
}

func printCanvases(out io.Writer, cs []gravepaint.Canvas) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tPUBLIC\tHERITAGES")
	for _, c := range cs {
		fmt.Fprintf(tw, "%d\t%s\t%t\t%d\n", c.ID, c.Title, c.Public(), len(c.Heritages))
	}

	return tw.Flush()
}

func searchCmd(args []string, out io.Writer) error {
	var c commonFlags
	fs := newFlagSet("search", &c)
	if err := parse(fs, args); err != nil {
		return err
	}

	q := strings.TrimSpace(strings.Join(fs.Args(), " "))
	if q == "" {
		return fmt.Errorf("%w: missing <query>", errUsage)
	}

	s, err := newSession(c)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), cliTimeout)
	defer cancel()

	query := api.SearchQuery{Query: q}
	if id, ok := identity.First(identity.Static(c.user), s.remembered()).UserID(ctx); ok {
		query.UserID, _ = gravepaint.ParseIdentity(id)
	}

	found, err := s.app.Assistant().Search(ctx, query)
	if err != nil {
		return err
	}

	return printSources(out, found)
}

func printSources(out io.Writer, found []gravepaint.SearchSource) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "CANVAS\tTITLE\tSCORE\tPREVIEW")
	for _, f := range found {
		fmt.Fprintf(tw, "%d\t%s\t%.2f\t%s\n", f.CanvasID, f.Title, f.SimilarityScore, f.ContentPreview)
	}

	return tw.Flush()
}

func (s *session) remembered() identity.Source {
	if s.store == nil {
		return nil
	}

	return s.store
}

func promptPassword(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	b, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}

	return strings.TrimSpace(string(b)), nil
}
