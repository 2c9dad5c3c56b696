// Package pipeline turns raw source output into a published catalog.
//
// A run concatenates the events of every successful source in source order, collapses records
// describing the same race with Dedupe, applies the final filter, makes ids unique with
// AssignIDs and attaches a quality snapshot.
//
// Example:
//
//	p := pipeline.New(normalizer, pipeline.WithPublicURL(env.PublicURL()))
//	catalog := p.Run(ctx, source.All(deps))
//	fmt.Println(catalog.TotalEvents)
package pipeline
