// # Description
//
// Package cfg builds the Control Flow Graph (CFG) of a TEAL program.
//
// ## Control Flow Graph (CFG)
//
// A CFG is a representation, using graph notation, of all paths that might be traversed
// through a program during its execution. In a CFG:
//
//   - Each node in the graph represents a basic block (a straight-line piece of code without any jumps).
//   - The directed edges represent jumps in the control flow.
//
// ## Construction
//
// Construction runs in two passes over the parsed instruction list:
//
//  1. Block boundaries. A block starts at the first instruction, at every label
//     position and right after every instruction that transfers control
//     (b, bz, bnz, switch, match, callsub, retsub, return, err).
//  2. Edges, chosen by the kind of each block's last instruction:
//     - plain op: fallthrough to the next block
//     - bz/bnz: fallthrough, then the branch target
//     - switch/match: fallthrough, then every target in operand order
//     - b: the branch target only
//     - callsub: the subroutine entry; every retsub of that subroutine
//     is later linked to the block following each call site
//     - return/err: nothing
//
// Edges are never removed and blocks are never split or merged afterwards, so
// a Program may be shared by any number of readers.
//
// ## Package Functionality
//
//  1. CFG Construction: use `FromSource` or `Build` to construct a Program.
//  2. Traverse it through `Blocks`, `Prev` and `Next` in custom analyses.
//  3. Export it with `WriteDot` or `ExportDot`, optionally highlighting blocks.
package cfg
