package teal

// Kind classifies an opcode by the way it transfers control.
type Kind int

const (
	// KindPlain ops fall through to the next instruction.
	KindPlain Kind = iota
	// KindBranch is the unconditional branch `b`.
	KindBranch
	// KindCondBranch covers `bz` and `bnz`.
	KindCondBranch
	// KindSwitch covers the multi-way `switch` and `match`.
	KindSwitch
	// KindCallsub jumps to a subroutine and records a return point.
	KindCallsub
	// KindRetsub returns to the caller of the current subroutine.
	KindRetsub
	// KindTerminal ends program execution (`return`, `err`).
	KindTerminal
)

var kindNames = [...]string{
	KindPlain:      "plain",
	KindBranch:     "branch",
	KindCondBranch: "conditional-branch",
	KindSwitch:     "switch",
	KindCallsub:    "callsub",
	KindRetsub:     "retsub",
	KindTerminal:   "terminal",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}

// TransfersControl reports whether an instruction of this kind ends a basic block.
func (k Kind) TransfersControl() bool {
	return k != KindPlain
}

// variadic marks an immediate count with no upper bound.
const variadic = -1

// OpSpec describes the shape of one opcode.
type OpSpec struct {
	Name string
	Kind Kind
	// MinImm and MaxImm bound the number of immediate operands.
	MinImm int
	MaxImm int
}

func (s OpSpec) acceptsImmediates(n int) bool {
	if n < s.MinImm {
		return false
	}
	return s.MaxImm == variadic || n <= s.MaxImm
}

// LookupOp returns the spec registered under name.
func LookupOp(name string) (OpSpec, bool) {
	spec, ok := opsByName[name]
	return spec, ok
}

var opsByName = buildOpTable()

func buildOpTable() map[string]OpSpec {
	table := make(map[string]OpSpec, 256)
	add := func(kind Kind, lo, hi int, names ...string) {
		for _, name := range names {
			table[name] = OpSpec{Name: name, Kind: kind, MinImm: lo, MaxImm: hi}
		}
	}

	// control flow
	add(KindBranch, 1, 1, "b")
	add(KindCondBranch, 1, 1, "bz", "bnz")
	add(KindSwitch, 0, variadic, "switch", "match")
	add(KindCallsub, 1, 1, "callsub")
	add(KindRetsub, 0, 0, "retsub")
	add(KindTerminal, 0, 0, "return", "err")

	// no immediates
	add(KindPlain, 0, 0,
		"sha256", "keccak256", "sha512_256", "sha3_256", "ed25519verify", "ed25519verify_bare",
		"+", "-", "/", "*", "<", ">", "<=", ">=", "&&", "||", "==", "!=", "!",
		"len", "itob", "btoi", "%", "|", "&", "^", "~",
		"mulw", "addw", "divw", "divmodw", "exp", "expw", "shl", "shr", "sqrt", "bitlen",
		"intc_0", "intc_1", "intc_2", "intc_3",
		"bytec_0", "bytec_1", "bytec_2", "bytec_3",
		"arg_0", "arg_1", "arg_2", "arg_3", "args",
		"gaids", "loads", "stores", "gloadss",
		"assert", "pop", "dup", "dup2", "swap", "select",
		"concat", "substring3", "getbit", "setbit", "getbyte", "setbyte",
		"extract3", "extract_uint16", "extract_uint32", "extract_uint64", "replace3",
		"balance", "app_opted_in", "app_local_get", "app_local_get_ex",
		"app_global_get", "app_global_get_ex", "app_local_put", "app_global_put",
		"app_local_del", "app_global_del", "min_balance",
		"b+", "b-", "b/", "b*", "b<", "b>", "b<=", "b>=", "b==", "b!=", "b%",
		"b|", "b&", "b^", "b~", "bsqrt", "bzero",
		"log", "itxn_begin", "itxn_next", "itxn_submit",
		"box_create", "box_extract", "box_replace", "box_del", "box_len",
		"box_get", "box_put", "box_splice", "box_resize",
		"falcon_verify", "sumhash512", "online_stake",
	)

	// exactly one immediate
	add(KindPlain, 1, 1,
		"int", "pushint", "addr", "method", "intc", "bytec", "arg",
		"global", "load", "store", "gloads", "gaid",
		"bury", "popn", "dupn", "dig", "cover", "uncover", "replace2",
		"base64_decode", "json_ref",
		"asset_holding_get", "asset_params_get", "app_params_get",
		"acct_params_get", "voter_params_get",
		"frame_dig", "frame_bury",
		"itxn_field", "itxn", "itxnas", "txnas", "gtxnsas",
		"ecdsa_verify", "ecdsa_pk_decompress", "ecdsa_pk_recover",
		"vrf_verify", "block", "mimc",
		"ec_add", "ec_scalar_mul", "ec_pairing_check", "ec_multi_scalar_mul",
		"ec_subgroup_check", "ec_map_to",
	)

	// two immediates
	add(KindPlain, 2, 2,
		"substring", "extract", "gload", "proto",
		"txna", "itxna", "gitxn", "gitxnas", "gtxnas", "gtxnsa",
	)

	// three immediates
	add(KindPlain, 3, 3, "gtxna", "gitxna")

	// ranged immediates
	add(KindPlain, 1, 2, "byte", "pushbytes", "txn", "gtxns")
	add(KindPlain, 2, 3, "gtxn")
	add(KindPlain, 0, variadic, "intcblock", "bytecblock", "pushints", "pushbytess")

	return table
}
