// Package engine implements the calculator input state machine.
//
// An Engine turns discrete digit, operator, decimal, function, clear,
// backspace and equals events into a two-operand expression and a
// displayed result. It never touches a display: hosts call the methods (or
// Dispatch) once per input event and read DisplayText, Expression and
// History back.
//
// The engine holds no locks. A host must deliver events for one engine
// serially, the way a browser delivers keystrokes and clicks.
package engine
