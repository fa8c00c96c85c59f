package signature

import (
	"encoding/binary"
	"fmt"
	"hash/fnv"

	"github.com/fritzo/pomagma-sub000/snapshot"
)

// Dump writes every declared table to w, in declaration order, each
// tagged with a content hash (spec.md §6's persistence contract,
// specified at the snapshot.Writer interface).
func (s *Signature) Dump(w snapshot.Writer) error {
	for h := range s.names {
		handle := Handle(h)
		name := s.names[handle]
		dump, err := s.dumpOne(handle)
		if err != nil {
			return fmt.Errorf("signature: dump %q: %w", name, err)
		}
		if err := w.WriteTable(name, dump); err != nil {
			return fmt.Errorf("signature: write %q: %w", name, err)
		}
	}
	return nil
}

// Load reads every declared table back from r and reinstalls its
// contents via the table's normal Insert path, so insert callbacks fire
// exactly as they would during live inference. It verifies each
// table's content hash first and reports *snapshot.ErrCorrupt on
// mismatch.
func (s *Signature) Load(r snapshot.Reader) error {
	for h := range s.names {
		handle := Handle(h)
		name := s.names[handle]
		dump, err := r.ReadTable(name)
		if err != nil {
			return fmt.Errorf("signature: read %q: %w", name, err)
		}
		want := dump.Hash
		dump.Hash = 0
		if hashDump(dump) != want {
			return &snapshot.ErrCorrupt{Name: name}
		}
		if err := s.loadOne(handle, dump); err != nil {
			return fmt.Errorf("signature: load %q: %w", name, err)
		}
	}
	return nil
}

func (s *Signature) dumpOne(h Handle) (snapshot.TableDump, error) {
	name := s.names[h]
	dump := snapshot.TableDump{Name: name, Kind: uint8(s.kinds[h])}
	dim := s.c.Capacity() + 1

	switch s.kinds[h] {
	case UnaryRelationKind:
		r := s.unaryRelations[h]
		it := r.Iterate()
		for {
			ob, ok := it.Next()
			if !ok {
				break
			}
			dump.UnaryMembers = append(dump.UnaryMembers, uint32(ob))
		}

	case BinaryRelationKind:
		r := s.binaryRelations[h]
		for lhs := 0; lhs < dim; lhs++ {
			it := r.Lx(Ob(lhs)).Iterate()
			for {
				rhs, ok := it.Next()
				if !ok {
					break
				}
				dump.Pairs = append(dump.Pairs, [2]uint32{uint32(lhs), uint32(rhs)})
			}
		}

	case NullaryFunctionKind:
		f := s.nullaryFunctions[h]
		if val, ok := f.Find(); ok {
			dump.Value = uint32(val)
		}

	case InjectiveFunctionKind:
		f := s.injectiveFunctions[h]
		it := f.Defined().Iterate()
		for {
			arg, ok := it.Next()
			if !ok {
				break
			}
			val, ok := f.Find(Ob(arg))
			if !ok {
				continue
			}
			dump.Forward = append(dump.Forward, [2]uint32{uint32(arg), uint32(val)})
		}

	case BinaryFunctionKind:
		f := s.binaryFunctions[h]
		for lhs := 0; lhs < dim; lhs++ {
			it := f.Lx(Ob(lhs)).Iterate()
			for {
				rhs, ok := it.Next()
				if !ok {
					break
				}
				val, ok := f.Find(Ob(lhs), rhs)
				if !ok {
					continue
				}
				dump.Triples = append(dump.Triples, [3]uint32{uint32(lhs), uint32(rhs), uint32(val)})
			}
		}

	case SymmetricFunctionKind:
		f := s.symmetricFunctions[h]
		for lhs := 0; lhs < dim; lhs++ {
			it := f.Support(Ob(lhs)).Iterate()
			for {
				rhs, ok := it.Next()
				if !ok {
					break
				}
				if int(rhs) < lhs {
					continue // upper triangle only, Support is symmetric
				}
				val, ok := f.Find(Ob(lhs), rhs)
				if !ok {
					continue
				}
				dump.Triples = append(dump.Triples, [3]uint32{uint32(lhs), uint32(rhs), uint32(val)})
			}
		}
	}

	dump.Hash = hashDump(dump)
	return dump, nil
}

func (s *Signature) loadOne(h Handle, dump snapshot.TableDump) error {
	switch s.kinds[h] {
	case UnaryRelationKind:
		r := s.unaryRelations[h]
		for _, ob := range dump.UnaryMembers {
			r.Insert(Ob(ob))
		}

	case BinaryRelationKind:
		r := s.binaryRelations[h]
		for _, p := range dump.Pairs {
			r.Insert(Ob(p[0]), Ob(p[1]))
		}

	case NullaryFunctionKind:
		if dump.Value == 0 {
			return nil
		}
		return s.nullaryFunctions[h].Insert(Ob(dump.Value))

	case InjectiveFunctionKind:
		f := s.injectiveFunctions[h]
		for _, p := range dump.Forward {
			if err := f.Insert(Ob(p[0]), Ob(p[1])); err != nil {
				return err
			}
		}

	case BinaryFunctionKind:
		f := s.binaryFunctions[h]
		for _, t := range dump.Triples {
			if err := f.Insert(Ob(t[0]), Ob(t[1]), Ob(t[2])); err != nil {
				return err
			}
		}

	case SymmetricFunctionKind:
		f := s.symmetricFunctions[h]
		for _, t := range dump.Triples {
			if err := f.Insert(Ob(t[0]), Ob(t[1]), Ob(t[2])); err != nil {
				return err
			}
		}
	}
	return nil
}

// hashDump computes a content hash over dump's payload (excluding the
// Hash field itself) with FNV-1a, per spec.md §6.
func hashDump(dump snapshot.TableDump) uint64 {
	h := fnv.New64a()
	var buf [4]byte
	writeU32 := func(v uint32) {
		binary.LittleEndian.PutUint32(buf[:], v)
		h.Write(buf[:])
	}
	h.Write([]byte(dump.Name))
	writeU32(uint32(dump.Kind))
	writeU32(dump.Value)
	for _, ob := range dump.UnaryMembers {
		writeU32(ob)
	}
	for _, p := range dump.Pairs {
		writeU32(p[0])
		writeU32(p[1])
	}
	for _, p := range dump.Forward {
		writeU32(p[0])
		writeU32(p[1])
	}
	for _, t := range dump.Triples {
		writeU32(t[0])
		writeU32(t[1])
		writeU32(t[2])
	}
	return h.Sum64()
}
