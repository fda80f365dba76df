// Package journal provides named, hierarchical diagnostic streams.
//
// Every stream belongs to a category (info, debug, error, dump) and has a
// dotted name; "FEM.Solver" is a child of "FEM", which is a child of the
// category root. A stream is enabled if it carries an explicit override,
// otherwise it inherits from its nearest ancestor with one. Inheritance is
// evaluated when a stream is written to, so changing an ancestor later
// still affects every descendant without its own override.
//
// Output goes through a Sink: TextSink writes plain text the way the
// simulation journal always did, LogSink turns each line into a zerolog
// event carrying the category, stream and rank.
package journal
