package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/sunflowerskg/internal/console"
	"golang.org/x/term"
)

var (
	readPasswordFunc = term.ReadPassword // mockable
	openFileFunc     = func(name string) (io.ReadCloser, error) { return os.Open(name) }

	errHelp    = errors.New("help provided")
	errAborted = errors.New("aborted")
)

type commandLine struct {
	session *console.Session
	in      io.Reader
	out     io.Writer
	token   string

	reader *bufio.Reader
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  login -username USERNAME                          - print a token for SUNFLOWERS_TOKEN")
	fmt.Fprintln(cli.out, "  inquiries [-page N]                               - list inquiries, 12 per page")
	fmt.Fprintln(cli.out, "  news list")
	fmt.Fprintln(cli.out, "  news create -content TEXT [-order N] [-inactive]")
	fmt.Fprintln(cli.out, "  news update -id ID [-content TEXT] [-order N] [-active true|false]")
	fmt.Fprintln(cli.out, "  gallery list")
	fmt.Fprintln(cli.out, "  gallery upload -title TITLE -file PATH [-order N] [-inactive]")
	fmt.Fprintln(cli.out, "  gallery update -id ID [-title TITLE] [-file PATH] [-order N] [-active true|false]")
	fmt.Fprintln(cli.out, "  delete -kind inquiry|news|gallery -id ID [-yes]")
	fmt.Fprintln(cli.out, "Commands other than login use SUNFLOWERS_TOKEN or prompt for -username and password.")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}
	ctx := context.Background()

	switch args[1] {
	case "login":
		return cli.login(ctx, args[2:])
	case "inquiries":
		return cli.inquiries(ctx, args[2:])
	case "news":
		return cli.news(ctx, args[2:])
	case "gallery":
		return cli.gallery(ctx, args[2:])
	case "delete":
		return cli.delete(ctx, args[2:])
	default:
		cli.printUsage()
		return errHelp
	}
}

func (cli *commandLine) newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(cli.out)
	return fs
}

func (cli *commandLine) parse(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return errHelp
		}
		return err
	}
	return nil
}

func (cli *commandLine) login(ctx context.Context, args []string) error {
	fs := cli.newFlagSet("login")
	username := fs.String("username", "", "admin username or email; the password will be prompted next")
	if err := cli.parse(fs, args); err != nil {
		return err
	}
	if *username == "" {
		fs.Usage()
		return errHelp
	}
	if err := cli.authenticate(ctx, *username); err != nil {
		return err
	}
	fmt.Fprintln(cli.out, cli.session.Token())
	return nil
}

// ensureSession 优先使用环境变量中的令牌，否则用 -username 提示输入密码后登录。
func (cli *commandLine) ensureSession(ctx context.Context, username string) error {
	if cli.session.LoggedIn() {
		return nil
	}
	if username == "" && cli.token != "" {
		cli.session.UseToken(cli.token)
		return nil
	}
	if username == "" {
		return errors.New("set SUNFLOWERS_TOKEN or pass -username")
	}
	return cli.authenticate(ctx, username)
}

func (cli *commandLine) authenticate(ctx context.Context, username string) error {
	fmt.Fprint(cli.out, "Enter password:")
	pwd, err := readPasswordFunc(int(os.Stdin.Fd()))
	fmt.Fprintln(cli.out)
	if err != nil {
		return err
	}
	if len(pwd) == 0 {
		return errors.New("password is required")
	}
	_, err = cli.session.Login(ctx, username, string(pwd))
	return err
}

func (cli *commandLine) inquiries(ctx context.Context, args []string) error {
	fs := cli.newFlagSet("inquiries")
	username := fs.String("username", "", "login as this admin")
	page := fs.Int("page", 1, "page number")
	if err := cli.parse(fs, args); err != nil {
		return err
	}
	if err := cli.ensureSession(ctx, *username); err != nil {
		return err
	}

	result, err := cli.session.ListInquiries(ctx, *page)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cli.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tPARENT\tAGE\tEMAIL\tRECEIVED\tMESSAGE")
	for _, item := range result.Items {
		fmt.Fprintf(w, "%d\t%s\t%d\t%s\t%s\t%s\n", item.ID, item.ParentName, item.ChildAge, item.Email,
			item.CreatedAt.Local().Format("2006-01-02 15:04"), truncate(item.Message, 48))
	}
	if err := w.Flush(); err != nil {
		return err
	}
	pages := result.Pages
	if pages < 1 {
		pages = 1
	}
	fmt.Fprintf(cli.out, "page %d/%d, %d inquiries\n", result.Page, pages, result.Total)
	return nil
}

func (cli *commandLine) news(ctx context.Context, args []string) error {
	if len(args) == 0 {
		cli.printUsage()
		return errHelp
	}

	switch args[0] {
	case "list":
		fs := cli.newFlagSet("news list")
		username := fs.String("username", "", "login as this admin")
		if err := cli.parse(fs, args[1:]); err != nil {
			return err
		}
		if err := cli.ensureSession(ctx, *username); err != nil {
			return err
		}
		items, err := cli.session.ListNews(ctx)
		if err != nil {
			return err
		}
		cli.printNews(items)
		return nil

	case "create":
		fs := cli.newFlagSet("news create")
		username := fs.String("username", "", "login as this admin")
		content := fs.String("content", "", "news text")
		order := fs.Int("order", 0, "display order, 0 appends to the end")
		inactive := fs.Bool("inactive", false, "hide from the public ticker")
		if err := cli.parse(fs, args[1:]); err != nil {
			return err
		}
		if strings.TrimSpace(*content) == "" {
			fs.Usage()
			return errHelp
		}
		if err := cli.ensureSession(ctx, *username); err != nil {
			return err
		}
		item, err := cli.session.CreateNews(ctx, console.NewsForm{Content: *content, IsActive: !*inactive, Order: *order})
		if err != nil {
			return err
		}
		fmt.Fprintf(cli.out, "created news #%d (order %d)\n", item.ID, item.Order)
		return nil

	case "update":
		fs := cli.newFlagSet("news update")
		username := fs.String("username", "", "login as this admin")
		id := fs.Uint("id", 0, "news id")
		content := fs.String("content", "", "news text")
		order := fs.Int("order", 0, "display order")
		active := fs.String("active", "", "true or false")
		if err := cli.parse(fs, args[1:]); err != nil {
			return err
		}
		if *id == 0 {
			fs.Usage()
			return errHelp
		}

		patch := console.NewsPatch{}
		set := visited(fs)
		if set["content"] {
			patch.Content = content
		}
		if set["order"] {
			patch.Order = order
		}
		if set["active"] {
			value, err := parseBoolFlag("active", *active)
			if err != nil {
				return err
			}
			patch.IsActive = &value
		}

		if err := cli.ensureSession(ctx, *username); err != nil {
			return err
		}
		item, err := cli.session.UpdateNews(ctx, *id, patch)
		if err != nil {
			return err
		}
		fmt.Fprintf(cli.out, "updated news #%d\n", item.ID)
		return nil

	default:
		cli.printUsage()
		return errHelp
	}
}

func (cli *commandLine) gallery(ctx context.Context, args []string) error {
	if len(args) == 0 {
		cli.printUsage()
		return errHelp
	}

	switch args[0] {
	case "list":
		fs := cli.newFlagSet("gallery list")
		username := fs.String("username", "", "login as this admin")
		if err := cli.parse(fs, args[1:]); err != nil {
			return err
		}
		if err := cli.ensureSession(ctx, *username); err != nil {
			return err
		}
		items, err := cli.session.ListGallery(ctx)
		if err != nil {
			return err
		}
		cli.printGallery(items)
		return nil

	case "upload":
		fs := cli.newFlagSet("gallery upload")
		username := fs.String("username", "", "login as this admin")
		title := fs.String("title", "", "image title")
		file := fs.String("file", "", "path to a jpg, png, gif or webp image")
		order := fs.Int("order", 0, "display order")
		inactive := fs.Bool("inactive", false, "hide from the public gallery")
		if err := cli.parse(fs, args[1:]); err != nil {
			return err
		}
		if strings.TrimSpace(*title) == "" || *file == "" {
			fs.Usage()
			return errHelp
		}

		image, err := openFileFunc(*file)
		if err != nil {
			return err
		}
		defer image.Close()

		active := !*inactive
		form := console.GalleryForm{
			Title:    title,
			IsActive: &active,
			Order:    order,
			Image:    &console.ImageFile{Name: *file, Data: image},
		}
		if err := cli.ensureSession(ctx, *username); err != nil {
			return err
		}
		item, err := cli.session.CreateGalleryImage(ctx, form)
		if err != nil {
			return err
		}
		fmt.Fprintf(cli.out, "uploaded gallery image #%d at %s\n", item.ID, item.ImageURL)
		return nil

	case "update":
		fs := cli.newFlagSet("gallery update")
		username := fs.String("username", "", "login as this admin")
		id := fs.Uint("id", 0, "gallery image id")
		title := fs.String("title", "", "image title")
		file := fs.String("file", "", "replacement image")
		order := fs.Int("order", 0, "display order")
		active := fs.String("active", "", "true or false")
		if err := cli.parse(fs, args[1:]); err != nil {
			return err
		}
		if *id == 0 {
			fs.Usage()
			return errHelp
		}

		form := console.GalleryForm{}
		set := visited(fs)
		if set["title"] {
			form.Title = title
		}
		if set["order"] {
			form.Order = order
		}
		if set["active"] {
			value, err := parseBoolFlag("active", *active)
			if err != nil {
				return err
			}
			form.IsActive = &value
		}
		if *file != "" {
			image, err := openFileFunc(*file)
			if err != nil {
				return err
			}
			defer image.Close()
			form.Image = &console.ImageFile{Name: *file, Data: image}
		}

		if err := cli.ensureSession(ctx, *username); err != nil {
			return err
		}
		item, err := cli.session.UpdateGalleryImage(ctx, *id, form)
		if err != nil {
			return err
		}
		fmt.Fprintf(cli.out, "updated gallery image #%d\n", item.ID)
		return nil

	default:
		cli.printUsage()
		return errHelp
	}
}

func (cli *commandLine) delete(ctx context.Context, args []string) error {
	fs := cli.newFlagSet("delete")
	username := fs.String("username", "", "login as this admin")
	kindFlag := fs.String("kind", "", "inquiry, news or gallery")
	id := fs.Uint("id", 0, "record id")
	yes := fs.Bool("yes", false, "skip the confirmation prompt")
	if err := cli.parse(fs, args); err != nil {
		return err
	}
	if *kindFlag == "" || *id == 0 {
		fs.Usage()
		return errHelp
	}
	kind, err := console.ParseKind(*kindFlag)
	if err != nil {
		return err
	}
	if err := cli.ensureSession(ctx, *username); err != nil {
		return err
	}

	target := cli.session.RequestDelete(kind, *id)
	if !*yes {
		ok, err := cli.confirm(fmt.Sprintf("Delete %s #%d? This cannot be undone [y/N]: ", target.Kind, target.ID))
		if err != nil {
			cli.session.CancelDelete()
			return err
		}
		if !ok {
			cli.session.CancelDelete()
			fmt.Fprintln(cli.out, "cancelled")
			return errAborted
		}
	}

	if _, err := cli.session.ConfirmDelete(ctx); err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "deleted %s #%d\n", target.Kind, target.ID)
	return nil
}

func (cli *commandLine) confirm(prompt string) (bool, error) {
	if cli.reader == nil {
		cli.reader = bufio.NewReader(cli.in)
	}
	fmt.Fprint(cli.out, prompt)
	line, err := cli.reader.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, err
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes", nil
}

func (cli *commandLine) printNews(items []console.News) {
	w := tabwriter.NewWriter(cli.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tORDER\tACTIVE\tCONTENT")
	for _, item := range items {
		fmt.Fprintf(w, "%d\t%d\t%t\t%s\n", item.ID, item.Order, item.IsActive, truncate(item.Content, 60))
	}
	w.Flush()
}

func (cli *commandLine) printGallery(items []console.GalleryImage) {
	w := tabwriter.NewWriter(cli.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tORDER\tACTIVE\tSIZE\tTITLE\tURL")
	for _, item := range items {
		fmt.Fprintf(w, "%d\t%d\t%t\t%dx%d\t%s\t%s\n", item.ID, item.Order, item.IsActive,
			item.ImageWidth, item.ImageHeight, item.Title, item.ImageURL)
	}
	w.Flush()
}

func visited(fs *flag.FlagSet) map[string]bool {
	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	return set
}

func parseBoolFlag(name, raw string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "true", "yes", "1":
		return true, nil
	case "false", "no", "0":
		return false, nil
	default:
		return false, fmt.Errorf("-%s must be true or false (got %q)", name, raw)
	}
}

func truncate(s string, max int) string {
	s = strings.Join(strings.Fields(s), " ")
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-1]) + "…"
}
