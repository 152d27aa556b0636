package main

import (
	"fmt"
	"path/filepath"

	"github.com/matst80/slask-catalog/pkg/catalog"
	"github.com/matst80/slask-catalog/pkg/common/jsoncompat"
	"github.com/matst80/slask-catalog/pkg/index"
	"github.com/matst80/slask-catalog/pkg/storage"
	"github.com/matst80/slask-catalog/pkg/types"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	filterFile string
	filterReq  = types.FilterRequest{}
	minPrice   float64
	maxPrice   float64
)

var filterCmd = &cobra.Command{
	Use:   "filter",
	Short: "Filter a catalog snapshot offline and print one page as json",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig()
		if err != nil {
			return err
		}
		defer logger.Sync()

		var items []*types.CatalogItem
		if filterFile != "" {
			items, err = loadSnapshotFile(filterFile)
		} else {
			items, err = cfg.Source().LoadItems(cmd.Context())
		}
		if err != nil {
			return err
		}
		items = index.SanitizeItems(items, logger)

		if cmd.Flags().Changed("min-price") {
			filterReq.MinPrice = &minPrice
		}
		if cmd.Flags().Changed("max-price") {
			filterReq.MaxPrice = &maxPrice
		}
		filterReq.Sanitize()
		page, err := runFilter(items, &filterReq)
		if err != nil {
			return err
		}
		logger.Debug("filtered snapshot", zap.Int("items", len(items)), zap.Int("total", page.Total))

		data, err := jsoncompat.Marshal(page)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return err
	},
}

func init() {
	f := filterCmd.Flags()
	f.StringVar(&filterFile, "file", "", "snapshot file (json or json.gz), defaults to the configured source")
	f.StringVar(&filterReq.Stock, "stock", "", "any, inStockOnly or outOfStockOnly")
	f.BoolVar(&filterReq.InStock, "in-stock", false, "in stock checkbox")
	f.BoolVar(&filterReq.OutOfStock, "out-of-stock", false, "out of stock checkbox")
	f.Float64Var(&minPrice, "min-price", 0, "lowest price")
	f.Float64Var(&maxPrice, "max-price", 0, "highest price")
	f.StringSliceVar(&filterReq.Brands, "brand", nil, "brands to keep")
	f.StringSliceVar(&filterReq.Categories, "category", nil, "categories to keep")
	f.Float64Var(&filterReq.MinRating, "rating", 0, "minimum average rating")
	f.StringVar(&filterReq.Sort, "sort", string(types.SortNewest), "sort key")
	f.IntVar(&filterReq.Page, "page", 0, "zero based page")
	f.IntVar(&filterReq.PageSize, "size", types.DefaultPageSize, "page size")
}

func runFilter(items []*types.CatalogItem, req *types.FilterRequest) (catalog.Page, error) {
	config, err := req.ToConfig(items)
	if err != nil {
		return catalog.Page{}, err
	}
	result, err := catalog.Apply(items, &config)
	if err != nil {
		return catalog.Page{}, err
	}
	return catalog.Paginate(result, req.Page, req.PageSize), nil
}

// loadSnapshotFile reads a snapshot from a single file, gzipped when the
// name ends with .gz.
func loadSnapshotFile(path string) ([]*types.CatalogItem, error) {
	disk := storage.NewDiskStorage("", filepath.Dir(path))
	name := filepath.Base(path)
	var items []*types.CatalogItem
	var err error
	if filepath.Ext(name) == ".gz" {
		err = disk.LoadGzippedJson(&items, name)
	} else {
		err = disk.LoadJson(&items, name)
	}
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return items, nil
}
