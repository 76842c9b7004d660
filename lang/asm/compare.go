package asm

// CompareOps enumerates the comparators COMPARE_OP's argument indexes into;
// the code generator looks up a source comparator's index here to build the
// instruction, and the VM looks the same index up to pick the operation.
var CompareOps = []string{"<", "<=", "==", "!=", ">", ">=", "in", "not in", "is", "is not"}

// CompareOpIndex returns name's position in CompareOps, or -1 if absent.
func CompareOpIndex(name string) int {
	for i, n := range CompareOps {
		if n == name {
			return i
		}
	}
	return -1
}
