// Package vecscope builds search requests by chaining immutable scopes over a
// Redis or Valkey search index.
//
// A Model binds a Go struct to a collection. Named scopes and templates extend
// the query specification; terminal calls run it.
//
//	type Product struct {
//	    ID    string  `vecscope:"id,id"`
//	    Title string  `vecscope:"title,text"`
//	    Color string  `vecscope:"color,tag"`
//	    Price float64 `vecscope:"price,numeric,sortable"`
//	}
//
//	client, _ := vecscope.New(ctx, vecscope.WithRedis("localhost:6379", ""))
//	products, _ := vecscope.NewModel[Product](client, "products")
//	_ = products.Scope("red", products.Scoped().Terms(map[string]any{"color": "red"}))
//	_ = products.Scope("cheaper_than", func(args ...any) vecscope.Scope[Product] {
//	    return products.Scoped().Filters(vecscope.Range("price", nil, args[0]))
//	})
//
//	red, _ := products.Scoped().Apply("red")
//	cheap, _ := red.Apply("cheaper_than", 50)
//	res, _ := cheap.Sort(vecscope.Asc("price")).Size(20).All(ctx)
package vecscope
