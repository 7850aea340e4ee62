// Package cli is a line-oriented shell over the catalog view controller.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/jhoicas/sweetshop/internal/application/session"
	"github.com/jhoicas/sweetshop/internal/application/view"
	"github.com/jhoicas/sweetshop/internal/infrastructure/rest"
)

// Shell reads commands from in, dispatches them to the view controller and
// renders the results to out.
type Shell struct {
	session *session.Store
	ctrl    *view.Controller
	in      *bufio.Scanner
	out     io.Writer
}

// New builds a shell over a session store and a view controller.
func New(sess *session.Store, ctrl *view.Controller, in io.Reader, out io.Writer) *Shell {
	return &Shell{session: sess, ctrl: ctrl, in: bufio.NewScanner(in), out: out}
}

// Run executes the read-dispatch loop until EOF or an exit command.
func (s *Shell) Run(ctx context.Context) error {
	fmt.Fprintln(s.out, "Sweet Shop — type 'help' for commands")

	// Settle any restored session before the first render.
	if s.session.Await(ctx) == session.StateAuthenticated {
		s.printIdentity()
		s.loadCatalog(ctx)
	}

	for {
		fmt.Fprint(s.out, "sweetshop> ")
		line, ok := s.readLine()
		if !ok {
			return nil
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		cmd, args := fields[0], fields[1:]
		if cmd == "exit" || cmd == "quit" {
			return nil
		}
		s.dispatch(ctx, cmd, args)
	}
}

func (s *Shell) dispatch(ctx context.Context, cmd string, args []string) {
	switch cmd {
	case "help":
		s.printHelp()
	case "login":
		s.login(ctx)
	case "register":
		s.register(ctx)
	case "logout":
		s.session.Logout(ctx)
		fmt.Fprintln(s.out, "logged out")
	case "me":
		s.printIdentity()
	default:
		if !s.signedIn() {
			fmt.Fprintln(s.out, "please login first ('login' or 'register')")
			return
		}
		s.dispatchCatalog(ctx, cmd, args)
	}
}

func (s *Shell) dispatchCatalog(ctx context.Context, cmd string, args []string) {
	switch cmd {
	case "list":
		if err := s.ctrl.Refresh(ctx); err != nil {
			s.printError(err)
			return
		}
		s.renderItems()
	case "filter":
		s.filter(ctx)
	case "reset":
		if err := s.ctrl.ResetFilter(ctx); err != nil {
			s.printError(err)
			return
		}
		s.renderItems()
	case "buy":
		s.withID(args, func(id string) { s.mutate(s.ctrl.Purchase(ctx, id)) })
	case "add":
		s.add(ctx)
	case "price":
		s.withID(args, func(id string) { s.editPrice(ctx, id) })
	case "restock":
		s.restock(ctx, args)
	case "rm":
		s.withID(args, func(id string) { s.remove(ctx, id) })
	default:
		fmt.Fprintf(s.out, "unknown command %q, try 'help'\n", cmd)
	}
}

// withID runs fn with the first argument, or prints usage when missing.
func (s *Shell) withID(args []string, fn func(id string)) {
	if len(args) < 1 {
		fmt.Fprintln(s.out, "usage: <command> <id>")
		return
	}
	fn(args[0])
}

func (s *Shell) login(ctx context.Context) {
	email := s.prompt("Email: ")
	password := s.prompt("Password: ")
	if err := s.session.Login(ctx, email, password); err != nil {
		s.printError(err)
		return
	}
	s.session.Await(ctx)
	s.printIdentity()
	s.loadCatalog(ctx)
}

func (s *Shell) register(ctx context.Context) {
	fullName := s.prompt("Full name: ")
	email := s.prompt("Email: ")
	password := s.prompt("Password: ")
	if err := s.session.Register(ctx, email, password, fullName); err != nil {
		s.printError(err)
		return
	}
	s.session.Await(ctx)
	s.printIdentity()
	s.loadCatalog(ctx)
}

func (s *Shell) filter(ctx context.Context) {
	fmt.Fprintln(s.out, "leave a field empty to skip it")
	query := s.prompt("Search: ")
	category := s.prompt("Category: ")
	minPrice := s.prompt("Min price: ")
	maxPrice := s.prompt("Max price: ")
	s.ctrl.SetFilters(query, category, minPrice, maxPrice)
	if err := s.ctrl.ApplyFilter(ctx); err != nil {
		s.printError(err)
		return
	}
	s.renderItems()
}

func (s *Shell) add(ctx context.Context) {
	name := s.prompt("Name: ")
	category := s.prompt("Category: ")
	price := s.prompt("Price: ")
	quantity := s.prompt("Quantity: ")
	s.mutate(s.ctrl.Create(ctx, name, category, price, quantity))
}

func (s *Shell) editPrice(ctx context.Context, id string) {
	if err := s.ctrl.StartPriceEdit(id); err != nil {
		s.printError(err)
		return
	}
	value := s.prompt("New price (empty to cancel): ")
	if value == "" {
		s.ctrl.CancelPriceEdit()
		fmt.Fprintln(s.out, "cancelled")
		return
	}
	s.ctrl.SetPriceDraft(value)
	s.mutate(s.ctrl.CommitPriceEdit(ctx))
}

func (s *Shell) restock(ctx context.Context, args []string) {
	if len(args) < 1 {
		fmt.Fprintln(s.out, "usage: restock <id> [quantity]")
		return
	}
	id := args[0]
	if len(args) > 1 {
		qty, err := strconv.Atoi(args[1])
		if err != nil {
			fmt.Fprintln(s.out, "error: quantity must be an integer")
			return
		}
		if err := s.ctrl.SetRestockQuantity(id, qty); err != nil {
			s.printError(err)
			return
		}
	}
	s.mutate(s.ctrl.Restock(ctx, id))
}

func (s *Shell) remove(ctx context.Context, id string) {
	answer := s.prompt("Delete sweet? [y/N] ")
	confirmed := strings.EqualFold(answer, "y") || strings.EqualFold(answer, "yes")
	if !confirmed {
		fmt.Fprintln(s.out, "cancelled")
		return
	}
	s.mutate(s.ctrl.Delete(ctx, id, true))
}

// mutate renders the refreshed list after a successful mutation.
func (s *Shell) mutate(err error) {
	if err != nil {
		s.printError(err)
		return
	}
	s.renderItems()
}

// loadCatalog does the initial list fetch. A failure leaves the list empty
// and prints a transient notice; it never aborts the shell.
func (s *Shell) loadCatalog(ctx context.Context) {
	if err := s.ctrl.Refresh(ctx); err != nil {
		fmt.Fprintln(s.out, "could not load catalog, try 'list' again")
		return
	}
	s.renderItems()
}

func (s *Shell) renderItems() {
	items := s.ctrl.Items()
	if len(items) == 0 {
		fmt.Fprintln(s.out, "no sweets found")
		return
	}
	w := tabwriter.NewWriter(s.out, 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tCATEGORY\tPRICE\tQTY")
	for _, it := range items {
		fmt.Fprintf(w, "%s\t%s\t%s\t$%s\t%d\n", it.ID, it.Name, it.Category, it.Price.StringFixed(2), it.Quantity)
	}
	w.Flush()
}

func (s *Shell) printIdentity() {
	switch s.session.State() {
	case session.StateAuthenticated:
		u := s.session.Identity()
		marker := ""
		if u.IsAdmin {
			marker = " (admin)"
		}
		fmt.Fprintf(s.out, "signed in as %s%s\n", u.Email, marker)
	case session.StateResolving:
		fmt.Fprintln(s.out, "signing in...")
	default:
		fmt.Fprintln(s.out, "not signed in")
	}
}

func (s *Shell) printHelp() {
	fmt.Fprintln(s.out, "commands:")
	fmt.Fprintln(s.out, "  login, register, logout, me")
	if s.signedIn() {
		fmt.Fprintln(s.out, "  list, filter, reset, buy <id>")
		if s.ctrl.IsAdmin() {
			fmt.Fprintln(s.out, "  add, price <id>, restock <id> [qty], rm <id>")
		}
	}
	fmt.Fprintln(s.out, "  help, exit")
}

func (s *Shell) printError(err error) {
	var reqErr *rest.RequestError
	if errors.As(err, &reqErr) {
		fmt.Fprintf(s.out, "error: %s\n", reqErr.Detail)
		return
	}
	fmt.Fprintf(s.out, "error: %v\n", err)
}

// signedIn is the routing guard: an invalid token reads as anonymous.
func (s *Shell) signedIn() bool {
	return s.session.State() == session.StateAuthenticated
}

func (s *Shell) prompt(label string) string {
	fmt.Fprint(s.out, label)
	line, _ := s.readLine()
	return strings.TrimSpace(line)
}

func (s *Shell) readLine() (string, bool) {
	if !s.in.Scan() {
		return "", false
	}
	return s.in.Text(), true
}
