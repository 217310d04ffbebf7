// Package container reads and writes readpack files: batches of nanopore reads
// with their raw signal, a pore-type dictionary and run-info entries.
//
// Writing:
//
//	w, err := container.Create(path, container.WithCreator("readpack-copy"))
//	code, err := w.AddPore("pore_A")
//	batch := container.NewColumnBatch(len(signals))
//	defer batch.Release()
//	// fill columns, batch.PoreTypes[i] = code
//	err = w.AddReads(batch, signals)
//	_, err = w.AddRunInfo(runInfo)
//	err = w.Close()
//
// Reading:
//
//	r, err := container.Open(path)
//	defer r.Close()
//	for i := range r.BatchCount() {
//	    b, err := r.Batch(i)
//	    rec, _, err := b.RowInfo(0, format.RowInfoVersion)
//	    n, err := b.PoreType(rec.PoreType, buf)
//	    b.Release()
//	}
//
// Each stored batch carries its own pore-type and end-reason dictionaries, so
// the codes in a RowRecord are only meaningful within the batch they came from.
// Run-info indices are file-wide.
package container
