// Package mol implements the in-memory structural model for macromolecules:
// an entity owns chains, chains own residues, residues own atoms, and atoms
// are linked by bonds and named torsions.
//
// Nodes live in per-kind arenas inside the Entity and are addressed through
// small handle values (AtomHandle, ResidueHandle, ...). A handle carries the
// generation of its slot, so a handle to a deleted node is detected instead
// of silently aliasing whatever reuses the slot.
//
// Positions are kept in two representations. The Cartesian system (XCS)
// stores absolute positions; the internal system (ICS) stores bond lengths,
// angles and torsions along a forest derived from the bond graph by
// directionality tracing. Edits go through editors:
//
//	ed := ent.EditXCS(mol.Buffered)
//	ed.SetAtomPos(atom, geom.V(1, 2, 3))
//	ed.Close() // propagates into internal coordinates
//
//	ics, err := ent.EditICS(mol.Buffered)
//	if err != nil {
//	    return err
//	}
//	ics.SetTorsionAngle(phi, geom.Rad(-57), true)
//	ics.Close() // regenerates positions
//
// Editors nest; only the outermost Close propagates. Unbuffered editors
// propagate after every operation.
//
// The package performs no locking. An Entity must be confined to one
// goroutine at a time.
package mol
