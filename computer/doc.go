// Package computer runs map/reduce computations over a partitioned graph.
//
// A vertex program leaves traversers halted on vertices (HaltAll stands in
// for one). A MapReduce then maps every vertex, optionally combines per
// partition, and reduces every key across partitions. Runner executes the
// stages with bounded concurrency and stores the final result under the
// computation's memory key.
//
//	g := computer.NewGraph(4)
//	// ... add vertices, halt traversers ...
//	r := computer.NewRunner(cfg.Computer, computer.WithLogger(log))
//	result, err := computer.Run(ctx, r, g, mr, store)
package computer
