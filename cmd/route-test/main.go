package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"text/tabwriter"

	"go.uber.org/zap"

	"github.com/kursadbilgin/tcxc-automation/internal/app/bootstrap"
	"github.com/kursadbilgin/tcxc-automation/internal/config"
	"github.com/kursadbilgin/tcxc-automation/internal/domain"
	"github.com/kursadbilgin/tcxc-automation/internal/observability"
	"github.com/kursadbilgin/tcxc-automation/internal/service"
)

type options struct {
	country     string
	description string
	connection  string
	account     string
	cld1        string
	cli1        string
	cld2        string
	cli2        string
	skipSellers bool
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	opts, err := parseFlags(args, os.Stderr)
	if err != nil {
		return 2
	}

	ctx, rt, err := bootstrap.NewRuntime(service.FlowRouteTest)
	if err != nil {
		log.Printf("startup failed: %v", err)
		return 1
	}
	defer rt.Close()

	return rt.Finish(ctx, routeTest(ctx, rt, opts, os.Stdout))
}

func parseFlags(args []string, output io.Writer) (options, error) {
	var opts options
	fs := flag.NewFlagSet("route-test", flag.ContinueOnError)
	fs.SetOutput(output)
	fs.StringVar(&opts.country, "country", "", "country for test number lookup")
	fs.StringVar(&opts.description, "description", "", "test number description filter, e.g. Mobile")
	fs.StringVar(&opts.connection, "connection", "", "seller i_connection to test through; empty only lists")
	fs.StringVar(&opts.account, "account", "", "buyer i_account (defaults to ROUTE_TEST_I_ACCOUNT)")
	fs.StringVar(&opts.cld1, "cld1", "", "first leg destination")
	fs.StringVar(&opts.cli1, "cli1", "", "first leg caller id")
	fs.StringVar(&opts.cld2, "cld2", "", "second leg destination")
	fs.StringVar(&opts.cli2, "cli2", "", "second leg caller id")
	fs.BoolVar(&opts.skipSellers, "skip-sellers", false, "do not print the seller route list")
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	return opts, nil
}

func routeTest(ctx context.Context, rt *bootstrap.Runtime, opts options, out io.Writer) error {
	cfg, err := config.LoadInto[config.RouteTestConfig]()
	if err != nil {
		return err
	}

	tester, err := service.NewRouteTestService(rt.Marketplace, service.RouteTestOptions{
		SellerPager:  cfg.SellerPager,
		SellerOffset: cfg.SellerOffset,
	}, rt.Metrics, rt.Logger)
	if err != nil {
		return err
	}

	if !opts.skipSellers {
		sellers, err := tester.Sellers(ctx)
		if err != nil {
			return err
		}
		if err := printSellers(out, sellers); err != nil {
			return err
		}
	}

	if opts.country != "" {
		numbers, err := tester.TestNumbers(ctx, opts.country, opts.description)
		if err != nil {
			return err
		}
		if err := printTestNumbers(out, numbers); err != nil {
			return err
		}
	}

	if opts.connection == "" {
		return nil
	}

	account := opts.account
	if account == "" {
		account = cfg.IAccount
	}
	statusText, err := tester.Start(ctx, domain.RouteTest{
		IAccount:    account,
		IConnection: opts.connection,
		CLD1:        opts.cld1,
		CLI1:        opts.cli1,
		CLD2:        opts.cld2,
		CLI2:        opts.cli2,
	})
	if err != nil {
		return err
	}

	observability.WithContextLogger(rt.Logger, ctx).Info("route test submitted", zap.String("statusText", statusText))
	_, err = fmt.Fprintf(out, "\n%s\n", statusText)
	return err
}

func printSellers(out io.Writer, sellers []domain.Seller) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SELLER\tI_CONNECTION\tROUTE")
	for _, seller := range sellers {
		fmt.Fprintf(w, "%s\t%s\t%s\n", seller.SellerName, seller.IConnection, seller.RouteName)
	}
	return w.Flush()
}

func printTestNumbers(out io.Writer, numbers []domain.TestNumber) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "CLD\tDESCRIPTION\tCOUNTRY")
	for _, number := range numbers {
		fmt.Fprintf(w, "%s\t%s\t%s\n", number.CLD, number.Description, number.CountryName)
	}
	return w.Flush()
}
