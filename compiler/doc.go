/*

Process of compilation

Program Text ->
	front (parse and generate code in one pass) ->
Instruction List (ir) ->
	format ->
Serialized Code (tinyL.out)

Serialized Code ->
	format.Parse ->
Instruction List (ir) ->
	opt (mark critical backward, prune forward) ->
Instruction List (ir) ->
	format ->
Serialized Code

*/
package compiler
