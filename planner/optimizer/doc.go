/*
Package optimizer plans a DAG job onto a pool of servers: how many slots each stage gets,
which neighbouring stages share a server, and which server each stage lands on.

* Concepts *
Stage cost:
  alpha/nslot + beta, where alpha is the parallelizable work and beta the fixed overhead.

Critical path:
  The heaviest source-to-node path counting stage costs and edge (data transfer) weights.
  Its length is the job completion time (JCT).

Grouping:
  Two stages joined by an edge are grouped when they are placed on the same server; the
  edge weight then drops to 0.

* Strategies *
DITTO:
  1. Allocate: layer the DAG by depth, merge costs bottom-up (stages of a layer in
     proportion to their work, consecutive layers by the square root of their work
     ratio) and split the budget top-down along the same rates, at least 1 slot each.
  2. Repeat: compute the greedy grouping order (heaviest edge of the critical path,
     zero it, recompute), try each edge in order against the group under construction,
     keep it if the group still fits on a single server and undo it otherwise, then
     commit the group best fit. Stop after a pass that keeps nothing.
  3. Place any stage left outside a group best fit.

AVERAGE:
  Every stage gets round(budget / stages) slots, placed first fit.

RATIO:
  Every stage gets round(budget * alpha / total alpha) slots, placed first fit.

A job whose budget exceeds the pool, whose slot floors cannot be met, or whose stages
cannot all be placed is infeasible (see IsInfeasible).
*/
package optimizer
