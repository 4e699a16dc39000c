package main

import (
	"net/url"
	"strings"

	appexport "github.com/finops/backend/internal/application/export"
	"github.com/urfave/cli/v2"
)

func listFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringSliceFlag{Name: fFilter, Aliases: []string{"f"}, Usage: "list filter as key=value, repeatable"},
		&cli.StringFlag{Name: fSearch, Usage: "free-text search"},
		&cli.StringFlag{Name: fSortBy, Usage: "sort field"},
		&cli.StringFlag{Name: fSortOrder, Usage: "asc or desc"},
	}
}

func exportFlags() []cli.Flag {
	return append(listFlags(),
		&cli.StringFlag{Name: fFormat, Value: "csv", Usage: "csv, excel, json or pdf"},
		&cli.StringSliceFlag{Name: fField, Usage: "column to include, repeatable (default: all)"},
		&cli.Int64Flag{Name: fMaxRows, Usage: "override the export row limit"},
	)
}

// parseFilters splits key=value pairs. Values may contain '='.
func parseFilters(pairs []string) (map[string]string, error) {
	filters := make(map[string]string, len(pairs))
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			return nil, cli.Exit("filter must be key=value: "+p, 1)
		}
		filters[k] = strings.TrimSpace(v)
	}
	return filters, nil
}

// listParams reuses the export request mapping for report commands.
func listParams(c *cli.Context) (url.Values, error) {
	req, err := exportRequest(c)
	if err != nil {
		return nil, err
	}
	return req.Params(), nil
}

func exportRequest(c *cli.Context) (appexport.Request, error) {
	filters, err := parseFilters(c.StringSlice(fFilter))
	if err != nil {
		return appexport.Request{}, err
	}
	return appexport.Request{
		Format:    c.String(fFormat),
		Fields:    c.StringSlice(fField),
		Filters:   filters,
		Search:    c.String(fSearch),
		SortBy:    c.String(fSortBy),
		SortOrder: c.String(fSortOrder),
	}, nil
}
