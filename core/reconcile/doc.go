// Package reconcile turns a new world snapshot and the durable prior state
// into committed mutations.
//
// Reconciliation is split into a pure planning step and a transactional
// apply step:
//
//	prior, err := reconcile.LoadState(ctx, db, worldID)
//	plan := reconcile.PlanData(prior, snap)
//	err = reconcile.Apply(ctx, db, plan)
//
// PlanData derives conquests (village owner changes to a non-null owner),
// tribe membership changes, best-ever records and archival of subjects
// missing from the snapshot. Subjects are never deleted; a subject that shows
// up again is un-archived. Rank records follow the game's convention: a
// numerically smaller rank is better, and only a strict improvement counts.
//
// PlanAchievements classifies observed achievements against the stored
// ledger. Unique achievements are added once and updated only when their
// level increases. Repeatable achievements are ordered instance lists per
// type; only instances beyond the stored count are added.
//
// Planning the same snapshot against the state it produced yields no events.
//
// Apply and ApplyAchievements commit a plan in one transaction and wrap any
// storage error in ErrCommitFailure.
package reconcile
