// Package stockham plans Stockham autosort FFTs for accelerators.
//
// A Plan collects a TransformSpec (lengths, precision, layouts, placement,
// strides, distances, scales) and bakes it into an immutable ExecutionPlan:
// for every axis, a radix decomposition taken from a curated table or found
// by greedy factorization, the Stockham passes with their stride triples and
// shared twiddle tables, and the work-group geometry, all checked against
// the device Envelope. Every pass writes its results in natural order, so no
// digit-reversal pass is ever needed.
//
// Execution is delegated: EnqueueTransform hands the ordered launch list to
// a Queue implemented by an accelerator runtime (see package gpu), with a
// barrier between consecutive launches.
//
//	plan, err := stockham.CreatePlan(1, []int{4096}, stockham.PlanOptions{})
//	if err != nil {
//	    return err
//	}
//	defer plan.Destroy()
//
//	if err := plan.Bake(); err != nil {
//	    return err
//	}
//
//	for _, p := range plan.ExecutionPlan().Passes() {
//	    fmt.Println(p.Radix, p.LS, p.R, p.L)
//	}
package stockham
