package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface is the command surface the REPL drives. App satisfies it; tests
// provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool

	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	WhoAmI(ctx context.Context) error

	List(ctx context.Context) error
	Refresh(ctx context.Context) error
	Sections(ctx context.Context) error
	Tags(ctx context.Context) error
	Folder(ctx context.Context, ref string) error
	Tag(ctx context.Context, tag string) error
	Search(ctx context.Context, q string) error
	From(ctx context.Context, day string) error
	To(ctx context.Context, day string) error
	Home(ctx context.Context) error
	Show(ctx context.Context, id string) error

	NewEntry(ctx context.Context) error
	EditEntry(ctx context.Context, id string) error
	Attach(ctx context.Context, id, path string) error
	NewFolder(ctx context.Context) error
	EditFolder(ctx context.Context, ref string) error
	DeleteFolder(ctx context.Context, ref string) error
}

const helpSignedOut = `Available commands:
  register            create an account
  login               sign in
  exit | quit         leave the program`

const helpSignedIn = `Available commands:
  l | list            show entries matching the filters
  refresh             reload folders and entries
  folders             list folders
  tags                list tags
  folder [name|-]     filter by folder
  tag [tag|-]         filter by tag
  search [text]       filter by text in title or content
  from [YYYY-MM-DD|-] first day shown
  to [YYYY-MM-DD|-]   last day shown
  home                clear every filter
  show <id>           print an entry
  new                 add an entry
  edit <id>           edit an entry
  attach <id> <path>  upload a file to an entry
  newfolder           add a folder
  editfolder <name>   edit a folder
  delfolder <name>    delete a folder, unfiling its entries
  whoami              show your account
  logout              sign out
  exit | quit         leave the program`

// runREPL reads commands from reader and dispatches them to a until EOF,
// "exit" or "quit". Handlers report their own errors to the user, so errors
// returned here are ignored.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("journal %s > ", statusFn()))
		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			return
		}
		if ctx.Err() != nil {
			return
		}

		cmd, rest, _ := strings.Cut(strings.TrimSpace(line), " ")
		rest = strings.TrimSpace(rest)
		if cmd == "" {
			continue
		}

		if cmd == "exit" || cmd == "quit" {
			printlnFn("Bye!")
			return
		}

		if !a.isLoggedIn() {
			switch cmd {
			case "help":
				printlnFn(helpSignedOut)
			case "register":
				_ = a.Register(ctx)
			case "login":
				_ = a.Login(ctx)
			default:
				printlnFn("Please login or register first")
			}
			continue
		}

		switch cmd {
		case "help":
			printlnFn(helpSignedIn)
		case "register", "login":
			printlnFn("Already signed in; logout first")
		case "logout":
			_ = a.Logout(ctx)
		case "whoami":
			_ = a.WhoAmI(ctx)

		case "l", "list":
			_ = a.List(ctx)
		case "refresh":
			_ = a.Refresh(ctx)
		case "folders", "sections":
			_ = a.Sections(ctx)
		case "tags":
			_ = a.Tags(ctx)
		case "folder":
			_ = a.Folder(ctx, rest)
		case "tag":
			_ = a.Tag(ctx, rest)
		case "search":
			_ = a.Search(ctx, rest)
		case "from":
			_ = a.From(ctx, rest)
		case "to":
			_ = a.To(ctx, rest)
		case "home":
			_ = a.Home(ctx)

		case "show", "edit", "editfolder", "delfolder":
			if rest == "" {
				printlnFn("Usage:", cmd, "<id>")
				continue
			}
			switch cmd {
			case "show":
				_ = a.Show(ctx, rest)
			case "edit":
				_ = a.EditEntry(ctx, rest)
			case "editfolder":
				_ = a.EditFolder(ctx, rest)
			case "delfolder":
				_ = a.DeleteFolder(ctx, rest)
			}
		case "attach":
			id, path, _ := strings.Cut(rest, " ")
			if id == "" || strings.TrimSpace(path) == "" {
				printlnFn("Usage: attach <id> <path>")
				continue
			}
			_ = a.Attach(ctx, id, strings.TrimSpace(path))

		case "new":
			_ = a.NewEntry(ctx)
		case "newfolder":
			_ = a.NewFolder(ctx)

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
