package cli

import (
	"context"
	"fmt"
	"github.com/joho/godotenv"
	"github.com/langowen/converter/pkg/converter"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"os"
	"strconv"
	"strings"
	"time"
)

type options struct {
	apiKey  string
	baseURL string
	timeout time.Duration
}

// NewRootCommand builds the converter CLI on top of gw. Flags fall back to
// CONVERTER_API_KEY and CONVERTER_BASE_URL, read after loading .env.
func NewRootCommand(gw converter.Gateway) *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:           "converter",
		Short:         "Currency converter backed by exchangerate-api",
		Long:          `List supported currencies, validate codes and convert amounts using live exchangerate-api rates.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			_ = godotenv.Load(".env")

			if opts.apiKey == "" {
				opts.apiKey = os.Getenv("CONVERTER_API_KEY")
			}
			if opts.baseURL == "" {
				opts.baseURL = os.Getenv("CONVERTER_BASE_URL")
			}
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.apiKey, "api-key", "k", "", "Provider access key (default: $CONVERTER_API_KEY)")
	cmd.PersistentFlags().StringVar(&opts.baseURL, "base-url", "", "Provider endpoint (default: $CONVERTER_BASE_URL or "+converter.DefaultBaseURL+")")
	cmd.PersistentFlags().DurationVarP(&opts.timeout, "timeout", "t", 10*time.Second, "Per-command deadline")

	cmd.AddCommand(
		newCurrenciesCommand(gw, opts),
		newValidCommand(gw, opts),
		newConvertCommand(gw, opts),
	)

	return cmd
}

func newCurrenciesCommand(gw converter.Gateway, opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "currencies",
		Short: "List supported currency codes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			const op = "cli.currencies"

			conv, err := opts.converter(gw)
			if err != nil {
				return errors.Wrap(err, op)
			}

			ctx, cancel := opts.context(cmd)
			defer cancel()

			codes, err := conv.SupportedCurrencyCodes(ctx)
			if err != nil {
				return errors.Wrap(err, op)
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), strings.Join(codes, "\n"))
			return err
		},
	}
}

func newValidCommand(gw converter.Gateway, opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "valid <code>",
		Short: "Check whether a currency code is supported",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			const op = "cli.valid"

			conv, err := opts.converter(gw)
			if err != nil {
				return errors.Wrap(err, op)
			}

			ctx, cancel := opts.context(cmd)
			defer cancel()

			ok, err := conv.IsCurrencyValid(ctx, args[0])
			if err != nil {
				return errors.Wrap(err, op)
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s: %t\n", args[0], ok)
			return err
		},
	}
}

func newConvertCommand(gw converter.Gateway, opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "convert <base> <quote> <amount>",
		Short: "Convert an amount between two currencies",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			const op = "cli.convert"

			amount, err := strconv.ParseFloat(args[2], 64)
			if err != nil {
				return errors.Wrapf(err, "%s: amount %q", op, args[2])
			}

			conv, err := opts.converter(gw)
			if err != nil {
				return errors.Wrap(err, op)
			}

			ctx, cancel := opts.context(cmd)
			defer cancel()

			res, err := conv.Exchange(ctx, args[0], args[1], amount)
			if err != nil {
				return errors.Wrap(err, op)
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s %s = %s %s (rate %s)\n",
				strconv.FormatFloat(res.Amount, 'f', -1, 64), res.Base,
				strconv.FormatFloat(res.Value, 'f', -1, 64), res.Quote,
				strconv.FormatFloat(res.Rate, 'f', -1, 64),
			)
			return err
		},
	}
}

func (o *options) converter(gw converter.Gateway) (*converter.Converter, error) {
	return converter.New(gw, o.apiKey, converter.WithBaseURL(o.baseURL))
}

func (o *options) context(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if o.timeout <= 0 {
		return context.WithCancel(ctx)
	}

	return context.WithTimeout(ctx, o.timeout)
}
