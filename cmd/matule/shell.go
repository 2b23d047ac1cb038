package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/fjod/matule/internal/app"
	"github.com/fjod/matule/internal/domain"
	"github.com/fjod/matule/internal/network"
	"github.com/fjod/matule/internal/viewmodel"
)

var errQuit = errors.New("quit")

type command struct {
	usage string
	help  string
	route string
	run   func(ctx context.Context, args []string) error
}

// Shell is a line-oriented front end over the app's view-models.
type Shell struct {
	app      *app.App
	out      io.Writer
	commands map[string]command
	order    []string
}

func NewShell(a *app.App, out io.Writer) *Shell {
	s := &Shell{app: a, out: out, commands: make(map[string]command)}
	s.register("help", command{usage: "help", help: "list commands", run: s.help})
	s.register("mode", command{usage: "mode", help: "show the auth mode", run: s.mode})
	s.register("register", command{usage: "register <email> <name> <password>", help: "create an account", run: s.signUp})
	s.register("login", command{usage: "login <email> <password>", help: "sign in", route: "Main", run: s.login})
	s.register("logout", command{usage: "logout", help: "sign out", run: s.logout})
	s.register("whoami", command{usage: "whoami", help: "show the current user", run: s.whoami})
	s.register("profile", command{usage: "profile [firstname|lastname|gender|birthday <value>]", help: "show or edit the profile", route: "Profile", run: s.profile})
	s.register("pin", command{usage: "pin set|check <1234>", help: "create or verify the PIN", run: s.pin})
	s.register("products", command{usage: "products", help: "load and list products", route: "Catalogue", run: s.products})
	s.register("category", command{usage: "category <name>", help: "filter by category", route: "Catalogue", run: s.category})
	s.register("search", command{usage: "search <query>", help: "search products by title", route: "Catalogue", run: s.search})
	s.register("categories", command{usage: "categories", help: "list product categories", run: s.categories})
	s.register("news", command{usage: "news", help: "list news banners", run: s.news})
	s.register("cart", command{usage: "cart add|inc|dec|rm <product-id> | cart show|clear", help: "manage the cart", route: "Cart", run: s.cart})
	s.register("checkout", command{usage: "checkout", help: "order the cart", route: "MyOrders", run: s.checkout})
	s.register("orders", command{usage: "orders", help: "list orders", route: "MyOrders", run: s.orders})
	s.register("projects", command{usage: "projects", help: "load and list projects", route: "Projects", run: s.projects})
	s.register("project", command{usage: "project add <name> [category] [image] | project rm|show <id>", help: "manage projects", run: s.project})
	s.register("route", command{usage: "route", help: "show the saved start screen", run: s.route})
	s.register("quit", command{usage: "quit", help: "exit", run: func(context.Context, []string) error { return errQuit }})
	return s
}

func (s *Shell) register(name string, c command) {
	s.commands[name] = c
	s.order = append(s.order, name)
}

// Run reads commands from in until EOF or quit.
func (s *Shell) Run(ctx context.Context, in io.Reader) error {
	scanner := bufio.NewScanner(in)
	s.printf("> ")
	for scanner.Scan() {
		if err := s.Exec(ctx, scanner.Text()); errors.Is(err, errQuit) {
			return nil
		} else if err != nil {
			s.printf("error: %v\n", err)
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		s.printf("> ")
	}
	return scanner.Err()
}

// Exec runs one command line.
func (s *Shell) Exec(ctx context.Context, line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}
	c, ok := s.commands[strings.ToLower(fields[0])]
	if !ok {
		return fmt.Errorf("unknown command %q, try help", fields[0])
	}
	if err := c.run(ctx, fields[1:]); err != nil {
		return err
	}
	if c.route != "" {
		if err := s.app.Sessions.SaveLastRoute(ctx, c.route); err != nil {
			return err
		}
	}
	return nil
}

func (s *Shell) printf(format string, args ...any) {
	fmt.Fprintf(s.out, format, args...)
}

func usage(c string) error {
	return fmt.Errorf("usage: %s", c)
}

func (s *Shell) help(context.Context, []string) error {
	w := tabwriter.NewWriter(s.out, 0, 4, 2, ' ', 0)
	for _, name := range s.order {
		fmt.Fprintf(w, "  %s\t%s\n", s.commands[name].usage, s.commands[name].help)
	}
	return w.Flush()
}

func (s *Shell) mode(context.Context, []string) error {
	s.printf("%s\n", s.app.Mode.Label())
	return nil
}

// status prints the outcome of a view-model operation and turns errors
// into command failures.
func (s *Shell) status(st viewmodel.Status, success string) error {
	if st.IsError() {
		return errors.New(st.Message)
	}
	s.printf("%s\n", success)
	return nil
}

func (s *Shell) signUp(ctx context.Context, args []string) error {
	if len(args) != 3 {
		return usage(s.commands["register"].usage)
	}
	email, name, password := args[0], args[1], args[2]
	if !viewmodel.IsValidEmail(email) {
		return fmt.Errorf("invalid email %q", email)
	}
	if !viewmodel.IsValidPassword(password) {
		return errors.New("password needs 8+ characters with upper, lower, digit and symbol")
	}
	if s.app.Auth.CheckUserExists(ctx, email) {
		return errors.New(viewmodel.MessageAccountExists)
	}
	s.app.Auth.SignUp(ctx, email, name, password)
	return s.status(s.app.Auth.State.Value(), "Registered "+email+", now login")
}

func (s *Shell) login(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return usage(s.commands["login"].usage)
	}
	s.app.Auth.SignIn(ctx, args[0], args[1])
	if err := s.status(s.app.Auth.State.Value(), "Signed in as "+args[0]); err != nil {
		return err
	}
	return s.app.Scheduler.Schedule(ctx)
}

func (s *Shell) logout(ctx context.Context, _ []string) error {
	s.app.SignOut(ctx)
	s.printf("Signed out\n")
	return nil
}

func (s *Shell) whoami(ctx context.Context, _ []string) error {
	name, err := s.app.Sessions.DisplayName(ctx)
	if err != nil {
		return err
	}
	email, err := s.app.Sessions.CurrentEmail(ctx)
	if err != nil {
		return err
	}
	loggedIn, err := s.app.Sessions.IsLoggedIn(ctx)
	if err != nil {
		return err
	}
	s.printf("%s <%s> logged_in=%t user_id=%s\n", name, email, loggedIn, s.app.Tokens.UserID())
	return nil
}

func (s *Shell) profile(ctx context.Context, args []string) error {
	userID := s.app.Tokens.UserID()
	if userID == "" {
		return errors.New(viewmodel.MessageNotSignedIn)
	}

	var result network.Result[network.User]
	switch len(args) {
	case 0:
		result = s.app.AuthRepo.GetUser(ctx, userID)
	case 2:
		value := args[1]
		var patch network.UserPatch
		draft, err := s.app.Sessions.ProfileDraft(ctx)
		if err != nil {
			return err
		}
		switch args[0] {
		case "firstname":
			patch.Firstname, draft.Name = &value, value
		case "lastname":
			patch.Lastname, draft.Surname = &value, value
		case "gender":
			patch.Gender, draft.Gender = &value, value
		case "birthday":
			patch.DateBirthday, draft.Birthday = &value, value
		default:
			return usage(s.commands["profile"].usage)
		}
		if err := s.app.Sessions.SaveProfileDraft(ctx, draft); err != nil {
			return err
		}
		result = s.app.AuthRepo.UpdateUser(ctx, userID, patch)
		if result.IsSuccess() {
			if err := s.app.Sessions.ClearProfileDraft(ctx); err != nil {
				return err
			}
		}
	default:
		return usage(s.commands["profile"].usage)
	}

	if err := result.Err(); err != nil {
		return err
	}
	u, _ := result.Data()
	s.printf("id=%s name=%q %q gender=%q birthday=%q\n", u.ID, u.Firstname, u.Lastname, u.Gender, u.DateBirthday)
	return nil
}

func (s *Shell) pin(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return usage(s.commands["pin"].usage)
	}
	switch args[0] {
	case "set":
		s.app.Auth.CreatePin(ctx, args[1])
		return s.status(s.app.Auth.State.Value(), "PIN saved")
	case "check":
		if !s.app.Auth.VerifyPin(ctx, args[1]) {
			return errors.New(s.app.Auth.State.Value().Message)
		}
		s.printf("PIN ok\n")
		return nil
	default:
		return usage(s.commands["pin"].usage)
	}
}

func (s *Shell) printProducts(products []domain.Product) error {
	if len(products) == 0 {
		s.printf("No products\n")
		return nil
	}
	w := tabwriter.NewWriter(s.out, 0, 4, 2, ' ', 0)
	for _, p := range products {
		mark := ""
		if q := s.app.Cart.Quantity(p.ID); q > 0 {
			mark = fmt.Sprintf("in cart x%d", q)
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", p.ID, p.Title, p.Category, viewmodel.FormatPrice(p.Price), mark)
	}
	return w.Flush()
}

func (s *Shell) ensureProducts(ctx context.Context) error {
	if len(s.app.Catalogue.AllProducts.Value()) == 0 {
		s.app.Catalogue.LoadProducts(ctx)
	}
	if st := s.app.Catalogue.Status.Value(); st.IsError() {
		return errors.New(st.Message)
	}
	return nil
}

func (s *Shell) products(ctx context.Context, _ []string) error {
	s.app.Catalogue.LoadProducts(ctx)
	if st := s.app.Catalogue.Status.Value(); st.IsError() {
		return errors.New(st.Message)
	}
	return s.printProducts(s.app.Catalogue.Products.Value())
}

func (s *Shell) category(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usage(s.commands["category"].usage)
	}
	if err := s.ensureProducts(ctx); err != nil {
		return err
	}
	s.app.Catalogue.SetCategory(strings.Join(args, " "))
	return s.printProducts(s.app.Catalogue.Products.Value())
}

func (s *Shell) search(ctx context.Context, args []string) error {
	if err := s.ensureProducts(ctx); err != nil {
		return err
	}
	s.app.Catalogue.FilterProducts(ctx, strings.Join(args, " "))
	return s.printProducts(s.app.Catalogue.Products.Value())
}

func (s *Shell) categories(ctx context.Context, _ []string) error {
	if err := s.ensureProducts(ctx); err != nil {
		return err
	}
	s.printf("%s\n", strings.Join(s.app.Catalogue.Categories(), ", "))
	return nil
}

func (s *Shell) news(ctx context.Context, _ []string) error {
	result := s.app.ProductRepo.GetNews(ctx)
	if err := result.Err(); err != nil {
		return err
	}
	news, _ := result.Data()
	for _, n := range news {
		s.printf("%s\t%s\n", n.ID, n.NewsImage)
	}
	return nil
}

func (s *Shell) findProduct(ctx context.Context, arg string) (domain.Product, error) {
	id, err := strconv.Atoi(arg)
	if err != nil {
		return domain.Product{}, fmt.Errorf("bad product id %q", arg)
	}
	for _, p := range s.app.Catalogue.AllProducts.Value() {
		if p.ID == id {
			return p, nil
		}
	}
	for _, it := range s.app.Cart.Items.Value() {
		if it.Product.ID == id {
			return it.Product, nil
		}
	}
	if p, ok := s.app.Local.ProductByID(ctx, id); ok {
		return p, nil
	}
	return domain.Product{}, fmt.Errorf("product %d not found", id)
}

func (s *Shell) cart(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return s.showCart()
	}
	switch args[0] {
	case "show":
		return s.showCart()
	case "clear":
		s.app.Cart.ClearCart()
		s.printf("Cart cleared\n")
		return nil
	case "add", "inc", "dec", "rm":
	default:
		return usage(s.commands["cart"].usage)
	}
	if len(args) != 2 {
		return usage(s.commands["cart"].usage)
	}
	p, err := s.findProduct(ctx, args[1])
	if err != nil {
		return err
	}

	vm := s.app.Cart
	vm.ResetState()
	switch args[0] {
	case "add":
		vm.AddToCart(ctx, p)
	case "inc":
		vm.IncreaseQuantity(ctx, p)
	case "dec":
		vm.DecreaseQuantity(ctx, p)
	case "rm":
		vm.RemoveFromCart(ctx, p)
	}
	if st := vm.Status.Value(); st.IsError() {
		s.printf("warning: %s\n", st.Message)
	}
	return s.showCart()
}

func (s *Shell) showCart() error {
	items := s.app.Cart.Items.Value()
	if len(items) == 0 {
		s.printf("Cart is empty\n")
		return nil
	}
	w := tabwriter.NewWriter(s.out, 0, 4, 2, ' ', 0)
	for _, it := range items {
		synced := "local"
		if it.Synced() {
			synced = "synced"
		}
		fmt.Fprintf(w, "%d\t%s\tx%d\t%s\t%s\n", it.Product.ID, it.Product.Title, it.Quantity,
			viewmodel.FormatPrice(it.Product.Price*it.Quantity), synced)
	}
	fmt.Fprintf(w, "\tTotal\t\t%s\t\n", viewmodel.FormatPrice(s.app.Cart.Total()))
	return w.Flush()
}

func (s *Shell) checkout(ctx context.Context, _ []string) error {
	order, err := s.app.Checkout(ctx)
	if err != nil {
		return err
	}
	s.printf("Order %s %s %s\n", order.ID, order.TotalPrice, order.Status)
	if st := s.app.Orders.Status.Value(); st.IsError() {
		s.printf("warning: %s\n", st.Message)
	}
	return nil
}

func (s *Shell) orders(context.Context, []string) error {
	orders := s.app.Orders.Orders.Value()
	if len(orders) == 0 {
		s.printf("No orders\n")
		return nil
	}
	w := tabwriter.NewWriter(s.out, 0, 4, 2, ' ', 0)
	for _, o := range orders {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d items\n", o.ID, o.Date, o.TotalPrice, o.Status, len(o.Items))
	}
	return w.Flush()
}

func (s *Shell) projects(ctx context.Context, _ []string) error {
	s.app.Projects.LoadProjects(ctx)
	if st := s.app.Projects.Status.Value(); st.IsError() {
		s.printf("warning: %s\n", st.Message)
	}
	projects := s.app.Projects.Projects.Value()
	if len(projects) == 0 {
		s.printf("No projects\n")
		return nil
	}
	w := tabwriter.NewWriter(s.out, 0, 4, 2, ' ', 0)
	for _, p := range projects {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", p.ID, p.Name, p.Category, s.app.Projects.RelativeTime(p.CreatedAt))
	}
	return w.Flush()
}

func (s *Shell) project(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return usage(s.commands["project"].usage)
	}
	vm := s.app.Projects
	switch args[0] {
	case "add":
		p := domain.Project{Name: args[1], Type: "clothes"}
		if len(args) > 2 {
			p.Category = args[2]
		}
		var image *network.Image
		if len(args) > 3 {
			var err error
			if image, err = readImage(args[3]); err != nil {
				return err
			}
		}
		vm.AddProject(ctx, p, image)
		return s.status(vm.Status.Value(), "Project saved")
	case "rm":
		vm.RemoveProject(ctx, args[1])
		s.printf("Project removed\n")
		return nil
	case "show":
		p, ok := vm.ProjectByID(args[1])
		if !ok {
			return fmt.Errorf("project %s not found", args[1])
		}
		s.printf("%s %q category=%q recipient=%q image=%s created %s\n",
			p.ID, p.Name, p.Category, p.Recipient, p.ImageURI, vm.RelativeTime(p.CreatedAt))
		return s.app.Sessions.SaveLastRoute(ctx, "ProjectDetails/"+p.ID)
	default:
		return usage(s.commands["project"].usage)
	}
}

func readImage(path string) (*network.Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}
	return &network.Image{
		Name:        filepath.Base(path),
		ContentType: mime.TypeByExtension(filepath.Ext(path)),
		Data:        data,
	}, nil
}

func (s *Shell) route(ctx context.Context, _ []string) error {
	route, err := s.app.Sessions.LastRoute(ctx)
	if err != nil {
		return err
	}
	s.printf("%s\n", route)
	return nil
}
