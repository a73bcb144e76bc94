package timeline

// Tx batches mutations: while any Tx is open the geometry cache is not
// recomputed, and closing the outermost one recomputes it exactly once.
//
//	tx := tl.Begin()
//	defer tx.Commit()
type Tx struct {
	t    *Timeline
	done bool
}

// Begin opens a transaction. Transactions nest.
func (t *Timeline) Begin() *Tx {
	t.txDepth++
	return &Tx{t: t}
}

// Commit closes the transaction. Calling it more than once is a no-op, so it
// is safe to defer.
func (tx *Tx) Commit() {
	if tx.done {
		return
	}
	tx.done = true
	tx.t.txDepth--
	if tx.t.txDepth == 0 {
		tx.t.rebuild()
	}
}

// InTransaction reports whether geometry updates are currently deferred.
func (t *Timeline) InTransaction() bool {
	return t.txDepth > 0
}
