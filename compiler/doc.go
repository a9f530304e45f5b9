/*

Process of compilation

Program Text ->
	front ->
Abstract Syntax Tree (ast) ->
	back ->
C Text ->
	cc ->
Native Executable

Program Text ->
	front ->
Abstract Syntax Tree (ast) ->
	pygen ->
Python Text

Both generators walk the same tree and make no language decisions of
their own: every question of meaning is settled before they run.

*/
package compiler
