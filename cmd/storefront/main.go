// Command storefront is a terminal harness for the webapp session. It wires
// the gateway client and session against a running API server and maps the
// four notification topics onto stdout, which makes the client behavior
// observable without a chat platform in front of it.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"storefront_miniapp/internal/webapp/gateway"
	"storefront_miniapp/internal/webapp/notify"
	"storefront_miniapp/internal/webapp/session"
	"storefront_miniapp/platform/config"
	"storefront_miniapp/platform/events"
	"storefront_miniapp/platform/logger"
)

func main() {
	userID := flag.String("user", "demo", "user id to shop as")
	name := flag.String("name", "Demo User", "display name")
	username := flag.String("username", "demo", "platform username")
	flag.Parse()

	cfg, err := config.LoadClient()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	bus := events.NewInMemoryBus(log)
	hub := notify.NewHub(bus)
	registerPrinters(hub)

	gw := gateway.NewClient(gateway.Config{
		BaseURL: cfg.GetBackendBaseURL(),
		Timeout: cfg.GetGatewayTimeout(),
	})

	sess := session.New(gw, hub, log, session.Config{
		Identity: session.Identity{
			UserID:   *userID,
			Name:     *name,
			Username: *username,
		},
		AuthToken:      os.Getenv("STOREFRONT_INIT_DATA"),
		DebounceWindow: cfg.GetSearchDebounceWindow(),
	})
	defer sess.Close()

	fmt.Printf("connecting to %s as %s\n", cfg.GetBackendBaseURL(), *userID)
	sess.Start(ctx)

	fmt.Println(`commands: category <name> | search <text> | buy <product-id> | yes | no | quit`)
	repl(ctx, sess)
}

func repl(ctx context.Context, sess *session.Session) {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return
		}

		line := strings.TrimSpace(scanner.Text())
		cmd, arg, _ := strings.Cut(line, " ")
		switch cmd {
		case "":
		case "category":
			sess.SetCategory(arg)
		case "search":
			sess.SetSearch(arg)
		case "buy":
			if err := sess.SelectProduct(arg); err != nil {
				fmt.Printf("! %v\n", err)
			}
		case "yes":
			if err := sess.Confirm(ctx); err != nil {
				fmt.Printf("! %v\n", err)
			}
		case "no":
			sess.Decline()
		case "quit":
			return
		default:
			fmt.Printf("! unknown command %q\n", cmd)
		}
	}
}

func registerPrinters(hub *notify.Hub) {
	hub.OnCatalog(func(evt notify.CatalogChanged) {
		if evt.Err != nil {
			fmt.Printf("catalog: stale (%v)\n", evt.Err)
		}
		fmt.Printf("catalog: %d visible of %d, categories %v\n",
			len(evt.Visible), len(evt.Products), evt.Categories)
		for _, p := range evt.Visible {
			fmt.Printf("  %s  %-20s %s  %s\n", p.ID, p.Name, money(p.Price), stockLabel(p.Stock))
		}
	})

	hub.OnOrders(func(evt notify.OrdersChanged) {
		if evt.Err != nil {
			fmt.Printf("orders: stale (%v)\n", evt.Err)
		}
		fmt.Printf("orders: %d\n", len(evt.Orders))
		for _, o := range evt.Orders {
			fmt.Printf("  %s  %-20s %s  %s  %s\n",
				o.ID, o.ProductName, money(o.Price), o.Status, o.Date.Format("2006-01-02 15:04"))
		}
	})

	hub.OnProfile(func(evt notify.ProfileChanged) {
		if evt.Err != nil {
			fmt.Printf("profile: stale (%v)\n", evt.Err)
		}
		fmt.Printf("profile: %s (@%s), %d orders, %s spent\n",
			evt.Profile.Name, evt.Profile.Username, evt.Profile.TotalOrders, money(evt.Profile.TotalSpent))
	})

	hub.OnWorkflow(func(evt notify.WorkflowChanged) {
		t := evt.Transition
		switch {
		case t.Reason != "":
			fmt.Printf("order: %s (%s)\n", t.State, t.Reason)
		case t.Product != nil:
			fmt.Printf("order: %s %s for %s\n", t.State, t.Product.Name, money(t.Product.Price))
		default:
			fmt.Printf("order: %s\n", t.State)
		}
	})
}

func money(cents int64) string {
	return fmt.Sprintf("$%.2f", float64(cents)/100)
}

func stockLabel(stock *int) string {
	if stock == nil {
		return "in stock"
	}
	return fmt.Sprintf("%d left", *stock)
}
