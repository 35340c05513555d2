package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/itsneelabh/shopeasy"
	"github.com/itsneelabh/shopeasy/pkg/auth"
	"github.com/itsneelabh/shopeasy/pkg/cart"
	"github.com/itsneelabh/shopeasy/pkg/catalog"
	"github.com/itsneelabh/shopeasy/pkg/notify"
	"github.com/itsneelabh/shopeasy/pkg/telemetry"
)

var errUsage = errors.New("usage")

type app struct {
	sf      *shopeasy.Storefront
	out     io.Writer
	errOut  io.Writer
	refresh bool
}

func (a *app) application() *cli.App {
	return &cli.App{
		Name:           "shopeasy",
		Usage:          "browse the catalog, manage your cart and sign in",
		Version:        shopeasy.Version,
		Writer:         a.out,
		ErrWriter:      a.errOut,
		Flags:          globalFlags(),
		OnUsageError:   a.usageError,
		ExitErrHandler: func(*cli.Context, error) {},
		Action: func(c *cli.Context) error {
			if c.NArg() > 0 {
				fmt.Fprintf(a.errOut, "unknown command %q\n", c.Args().First())
			} else {
				_ = cli.ShowAppHelp(c)
			}
			return errUsage
		},
		Commands: a.commands(),
	}
}

func (a *app) commands() []*cli.Command {
	cmds := []*cli.Command{
		{
			Name:  "products",
			Usage: "list products",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "category", Value: catalog.CategoryAll, Usage: "category to show"},
				&cli.StringFlag{Name: "search", Usage: "text to match in title, description or category"},
				&cli.IntFlag{Name: "pages", Value: 1, Usage: "how many pages of " + strconv.Itoa(catalog.PageSize) + " to show"},
				&cli.BoolFlag{Name: "featured", Usage: "only featured products"},
			},
			Action: a.action(a.products),
		},
		{
			Name:      "product",
			Usage:     "show one product and related items",
			ArgsUsage: "<id>",
			Flags: []cli.Flag{
				&cli.IntFlag{Name: "qty", Value: 1, Usage: "quantity to preview"},
			},
			Action: a.action(a.product),
		},
		{
			Name:   "categories",
			Usage:  "list categories",
			Action: a.action(a.categories),
		},
		{
			Name:   "cart",
			Usage:  "show or change the cart",
			Action: a.action(a.cartList),
			Subcommands: []*cli.Command{
				{Name: "list", Usage: "show the cart", Action: a.action(a.cartList)},
				{
					Name:      "add",
					Usage:     "add a product",
					ArgsUsage: "<product id>",
					Flags: []cli.Flag{
						&cli.IntFlag{Name: "qty", Value: 1, Usage: "quantity"},
						&cli.StringFlag{Name: "var", Usage: "variations as key=value pairs, comma separated"},
					},
					Action: a.action(a.cartAdd),
				},
				{Name: "update", Usage: "change a line quantity by delta", ArgsUsage: "<key> <delta>", Action: a.action(a.cartUpdate)},
				{Name: "remove", Usage: "remove a line", ArgsUsage: "<key>", Action: a.action(a.cartRemove)},
				{Name: "clear", Usage: "empty the cart", Action: a.action(a.cartClear)},
			},
		},
		{
			Name:  "signin",
			Usage: "sign in",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "email", Usage: "account email"},
				&cli.StringFlag{Name: "password", Usage: "account password"},
			},
			Action: a.action(a.signIn),
		},
		{
			Name:  "signup",
			Usage: "create an account",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "email", Usage: "account email"},
				&cli.StringFlag{Name: "password", Usage: "password: 8+ characters with upper, lower and a digit"},
				&cli.StringFlag{Name: "first", Usage: "first name"},
				&cli.StringFlag{Name: "last", Usage: "last name"},
			},
			Action: a.action(a.signUp),
		},
		{Name: "signout", Usage: "end the current session", Action: a.action(a.signOut)},
		{
			Name:  "reset",
			Usage: "send password reset instructions",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "email", Usage: "account email"},
			},
			Action: a.action(a.reset),
		},
		{Name: "whoami", Usage: "show the signed-in user", Action: a.action(a.whoami)},
	}
	for _, cmd := range cmds {
		cmd.OnUsageError = a.usageError
		for _, sub := range cmd.Subcommands {
			sub.OnUsageError = a.usageError
		}
	}
	return cmds
}

func (a *app) usageError(_ *cli.Context, err error, _ bool) error {
	fmt.Fprintln(a.errOut, err)
	return errUsage
}

// action opens the storefront around one command and prints any queued
// notifications once it returns.
func (a *app) action(fn func(ctx context.Context, c *cli.Context) error) cli.ActionFunc {
	return func(c *cli.Context) error {
		sf, err := openStorefront(c, a.errOut)
		if err != nil {
			return err
		}
		defer func() {
			if err := sf.Close(context.Background()); err != nil {
				fmt.Fprintf(a.errOut, "warning: %v\n", err)
			}
		}()
		a.sf = sf
		a.refresh = c.Bool("refresh")

		ctx := telemetry.WithCorrelationID(c.Context)
		err = fn(ctx, c)
		a.flushNotifications(err != nil)
		if err != nil && !errors.Is(err, errUsage) {
			sf.Logger().Debug("Command failed", "command", c.Command.FullName(), "error", err.Error())
		}
		return err
	}
}

func (a *app) usage(format string, args ...interface{}) error {
	fmt.Fprintf(a.errOut, format+"\n", args...)
	return errUsage
}

func (a *app) products(ctx context.Context, c *cli.Context) error {
	category := c.String("category")
	pages := c.Int("pages")

	var (
		products []shopeasy.Product
		source   string
		degraded bool
	)
	if category != "" && category != catalog.CategoryAll {
		res, err := a.sf.ProductsByCategory(ctx, category, a.refresh)
		if err != nil {
			return err
		}
		products, source, degraded = res.Value, res.Source.String(), res.Degraded()
	} else {
		res, err := a.sf.Products(ctx, a.refresh)
		if err != nil {
			return err
		}
		products, source, degraded = res.Value, res.Source.String(), res.Degraded()
	}

	products = catalog.FilterByCategory(products, category)
	products = catalog.Search(products, c.String("search"))
	if c.Bool("featured") {
		products = catalog.Featured(products)
	}
	visible, hasMore := catalog.Page(products, pages)
	renderProductGrid(a.out, a.sf, visible)

	fmt.Fprintf(a.out, "\nShowing %d of %d products", len(visible), len(products))
	if degraded {
		fmt.Fprintf(a.out, " (%s data)", source)
	}
	fmt.Fprintln(a.out)
	if hasMore {
		fmt.Fprintf(a.out, "More available: rerun with --pages %d\n", pages+1)
	}
	return nil
}

func (a *app) product(ctx context.Context, c *cli.Context) error {
	if c.NArg() != 1 {
		return a.usage("usage: shopeasy product [--qty n] <id>")
	}
	id, err := strconv.Atoi(c.Args().First())
	if err != nil || id < 1 {
		return a.usage("invalid product id %q", c.Args().First())
	}

	res, err := a.sf.Product(ctx, id, a.refresh)
	if err != nil {
		return err
	}
	related, err := a.sf.RelatedProducts(ctx, res.Value)
	if err != nil {
		// related products are optional on the detail page
		a.sf.Logger().Warn("Related products unavailable", "product_id", id, "error", err.Error())
	}
	renderProductDetail(a.out, a.sf, res.Value, c.Int("qty"), related)
	return nil
}

func (a *app) categories(ctx context.Context, _ *cli.Context) error {
	res, err := a.sf.Categories(ctx, a.refresh)
	if err != nil {
		return err
	}
	renderCategories(a.out, res.Value)
	return nil
}

func (a *app) cartList(_ context.Context, c *cli.Context) error {
	if c.NArg() > 0 {
		return a.usage("unknown cart command %q", c.Args().First())
	}
	renderCart(a.out, a.sf)
	return nil
}

func (a *app) cartAdd(ctx context.Context, c *cli.Context) error {
	if c.NArg() != 1 {
		return a.usage("usage: shopeasy cart add [--qty n] [--var size=M,color=red] <product id>")
	}
	id, err := strconv.Atoi(c.Args().First())
	if err != nil {
		return a.usage("invalid product id %q", c.Args().First())
	}
	variations, err := parseVariations(c.String("var"))
	if err != nil {
		return a.usage("%v", err)
	}
	p, err := a.sf.Product(ctx, id, a.refresh)
	if err != nil {
		return err
	}
	res, err := a.sf.AddToCart(ctx, p.Value, c.Int("qty"), variations)
	if err != nil {
		return err
	}
	verb := "Added"
	if res.Merged {
		verb = "Updated"
	}
	fmt.Fprintf(a.out, "%s %s (quantity %d)\n", verb, res.Item.Title, res.Item.Quantity)
	return nil
}

func (a *app) cartUpdate(ctx context.Context, c *cli.Context) error {
	if c.NArg() != 2 {
		return a.usage("usage: shopeasy cart update <key> <delta>")
	}
	delta, err := strconv.Atoi(c.Args().Get(1))
	if err != nil {
		return a.usage("invalid delta %q", c.Args().Get(1))
	}
	res, err := a.sf.Cart().UpdateQuantity(ctx, c.Args().First(), delta)
	if err != nil {
		return err
	}
	if res.Removed {
		fmt.Fprintf(a.out, "Removed %s\n", res.Item.Title)
	} else {
		fmt.Fprintf(a.out, "%s now at quantity %d\n", res.Item.Title, res.Item.Quantity)
	}
	return nil
}

func (a *app) cartRemove(ctx context.Context, c *cli.Context) error {
	if c.NArg() != 1 {
		return a.usage("usage: shopeasy cart remove <key>")
	}
	res, err := a.sf.Cart().RemoveItem(ctx, c.Args().First())
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Removed %s\n", res.Item.Title)
	return nil
}

func (a *app) cartClear(ctx context.Context, _ *cli.Context) error {
	a.sf.Cart().Clear(ctx)
	fmt.Fprintln(a.out, "Cart cleared")
	return nil
}

func parseVariations(s string) (cart.Variations, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	v := cart.Variations{}
	for _, pair := range strings.Split(s, ",") {
		k, val, ok := strings.Cut(pair, "=")
		if !ok || strings.TrimSpace(k) == "" {
			return nil, fmt.Errorf("invalid variation %q, want key=value", pair)
		}
		v[strings.TrimSpace(k)] = strings.TrimSpace(val)
	}
	return v, nil
}

func (a *app) signIn(ctx context.Context, c *cli.Context) error {
	m, err := a.sf.Auth()
	if err != nil {
		return err
	}
	s, err := m.SignIn(ctx, c.String("email"), c.String("password"))
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Welcome back, %s\n", greetingName(s))
	return nil
}

func (a *app) signUp(ctx context.Context, c *cli.Context) error {
	m, err := a.sf.Auth()
	if err != nil {
		return err
	}
	password := c.String("password")
	fmt.Fprintf(a.out, "Password strength: %s\n", auth.PasswordStrength(password))
	profile := auth.Profile{FirstName: c.String("first"), LastName: c.String("last")}
	s, err := m.SignUp(ctx, c.String("email"), password, profile)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Account created for %s\n", greetingName(s))
	return nil
}

func (a *app) signOut(ctx context.Context, _ *cli.Context) error {
	m, err := a.sf.Auth()
	if err != nil {
		return err
	}
	if _, ok := m.Current(); !ok {
		fmt.Fprintln(a.out, "Not signed in")
		return nil
	}
	return m.SignOut(ctx)
}

func (a *app) reset(ctx context.Context, c *cli.Context) error {
	m, err := a.sf.Auth()
	if err != nil {
		return err
	}
	return m.SendPasswordReset(ctx, c.String("email"))
}

func (a *app) whoami(_ context.Context, _ *cli.Context) error {
	m, err := a.sf.Auth()
	if err != nil {
		return err
	}
	s, ok := m.Current()
	if !ok {
		fmt.Fprintln(a.out, "Not signed in")
		return nil
	}
	renderSession(a.out, s)
	return nil
}

func greetingName(s auth.Session) string {
	if s.DisplayName != "" {
		return s.DisplayName
	}
	return s.Email
}

// flushNotifications prints queued notifications. Error notifications are
// skipped when the command failed since the error line says the same.
func (a *app) flushNotifications(failed bool) {
	for _, n := range a.sf.Notifications() {
		if failed && n.Level == notify.LevelError {
			continue
		}
		fmt.Fprintf(a.errOut, "[%s] %s\n", n.Level, n.Message)
	}
}
