package main

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/pagebound/bookstore-server/internal/domain"
	"github.com/pagebound/bookstore-server/internal/service"
)

type seedBook struct {
	title string
	price string
	stock *int
}

type seedAuthor struct {
	name  string
	bio   string
	books []seedBook
}

var demoCatalog = []seedAuthor{
	{
		name: "Ursula K. Le Guin",
		bio:  "American author of speculative fiction.",
		books: []seedBook{
			{"A Wizard of Earthsea", "9.99", domain.IntPtr(12)},
			{"The Left Hand of Darkness", "12.50", domain.IntPtr(5)},
			{"The Dispossessed", "11.25", nil},
		},
	},
	{
		name: "Italo Calvino",
		bio:  "Italian journalist and writer.",
		books: []seedBook{
			{"Invisible Cities", "10.00", domain.IntPtr(8)},
			{"If on a winter's night a traveler", "13.75", domain.IntPtr(0)},
		},
	},
	{
		name: "Octavia E. Butler",
		books: []seedBook{
			{"Kindred", "14.99", domain.IntPtr(20)},
			{"Parable of the Sower", "15.49", nil},
		},
	},
}

func newSeedCmd(opts *rootOptions) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load a small demo catalog of authors and books",
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := openEnv(opts)
			if err != nil {
				return err
			}
			defer e.Close()

			authors, books, err := seedCatalog(cmd.Context(), e.catalog, force)
			if err != nil {
				return err
			}
			if authors == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Catalog is not empty; nothing seeded (use --force to add anyway)")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d authors and %d books\n", authors, books)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "Seed even when the catalog already has authors")
	return cmd
}

// seedCatalog creates demoCatalog through the catalog service. Unless force
// is set it does nothing when any author exists.
func seedCatalog(ctx context.Context, catalog *service.CatalogService, force bool) (authors, books int, err error) {
	if !force {
		existing, err := catalog.ListAuthors(ctx)
		if err != nil {
			return 0, 0, err
		}
		if len(existing) > 0 {
			return 0, 0, nil
		}
	}

	for _, a := range demoCatalog {
		author, err := catalog.CreateAuthor(ctx, service.CreateAuthorRequest{Name: a.name, Bio: a.bio})
		if err != nil {
			return authors, books, fmt.Errorf("seed author %q: %w", a.name, err)
		}
		authors++

		for _, b := range a.books {
			_, err := catalog.CreateBook(ctx, service.CreateBookRequest{
				Title:    b.title,
				Price:    decimal.RequireFromString(b.price),
				Stock:    b.stock,
				AuthorID: author.ID,
			})
			if err != nil {
				return authors, books, fmt.Errorf("seed book %q: %w", b.title, err)
			}
			books++
		}
	}
	return authors, books, nil
}
