package dht

// Iterator is the streaming lookup cursor from §3, returned by LookupFirst
// and advanced by Next. Unlike the reference system's process-global
// dht_get(NULL) cursor, it is an explicit object: the dispatcher drives at
// most one at a time (per its single-threaded loop), but nothing prevents
// a caller from holding several concurrently.
type Iterator struct {
	table     *Table
	search    string
	nextIndex int
}

// LookupFirst returns a new iterator with (search, next_index) set to
// (hash, 0); its first Next call yields the first live match, if any.
func (t *Table) LookupFirst(hash string) *Iterator {
	return &Iterator{table: t, search: hash, nextIndex: 0}
}

// Next scans forward from the iterator's cursor, returning the next live
// record whose hash equals the search key, or (Record{}, false) once the
// scan reaches cursor.
func (it *Iterator) Next() (Record, bool) {
	t := it.table
	t.mu.Lock()
	defer t.mu.Unlock()

	for ; it.nextIndex < t.cursor; it.nextIndex++ {
		s := t.slots[it.nextIndex]
		if s.live() && s.Hash == it.search {
			it.nextIndex++
			return s, true
		}
	}
	return Record{}, false
}

// Deprecated reports whether a record is too old to satisfy a get query
// (invariant 6): now - timestamp > hashDeprecationTimeSeconds.
func Deprecated(r Record, now int64, hashDeprecationTimeSeconds int64) bool {
	return now-r.Timestamp > hashDeprecationTimeSeconds
}

// Evictable reports whether a record is old enough for the collector to
// reclaim its slot (invariant 5): now - timestamp > garbageColTimeSeconds.
func Evictable(r Record, now int64, garbageColTimeSeconds int64) bool {
	return now-r.Timestamp > garbageColTimeSeconds
}
