// Package gridex embeds the gridex listing engine in a Go program: search,
// filtering and hierarchical aggregation over relational tables, answered
// in the shape data grids expect.
//
// # Low-level API
//
//	client, _ := gridex.New(ctx,
//	    gridex.WithPostgres("postgres://localhost/shop"),
//	    gridex.WithResourcesFile("resources.yaml"),
//	)
//	resp, _ := client.List(ctx, "orders", gridex.Params{
//	    Filters: []gridex.Filter{{Field: "status", Values: []any{"open"}}},
//	    Group:   []gridex.GroupLevel{{Selector: "placedAt", Interval: "month"}},
//	    GroupSummary: []gridex.Summary{{Type: "sum", Selector: "amount"}},
//	})
//
// # Schema-first API with Go generics
//
//	type Order struct {
//	    ID       int64     `gridex:"id,pk"`
//	    Code     string    `gridex:"code,searchable,sortable"`
//	    Amount   float64   `gridex:"amount,sortable"`
//	    PlacedAt time.Time `gridex:"placed_at,sortable"`
//	    Removed  bool      `gridex:"is_removed,softdelete"`
//	}
//
//	res, _ := gridex.ResourceFor[Order]("orders", "orders")
//	client, _ := gridex.New(ctx, gridex.WithSQLite("shop.db"), gridex.WithResource(res))
//	orders, _ := gridex.NewTable[Order](client, "orders")
//	page, _ := orders.List(ctx, gridex.Params{Search: "A-10", RequireTotalCount: true})
package gridex
