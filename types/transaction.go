package types

// Transaction is one ledger transaction as returned by the RPC node with
// encoding "json". Signature is the first entry of the signatures array and
// uniquely identifies the transaction within its block.
type Transaction struct {
	Signature string          `json:"signature"`
	Slot      uint64          `json:"slot"`
	BlockTime *int64          `json:"blockTime"`
	Data      TransactionData `json:"transaction"`
}

type TransactionData struct {
	Message    Message  `json:"message"`
	Signatures []string `json:"signatures"`
}

// Message carries the ordered account list and the compiled instructions.
// Account-key ordering is significant: position encodes signer/writable
// status via the header counts.
type Message struct {
	AccountKeys     []string       `json:"accountKeys"`
	Instructions    []Instruction  `json:"instructions"`
	RecentBlockhash string         `json:"recentBlockhash,omitempty"`
	Header          *MessageHeader `json:"header,omitempty"`
}

// MessageHeader partitions the account list into four contiguous segments:
// signed-writable, signed-readonly, unsigned-writable, unsigned-readonly.
type MessageHeader struct {
	NumRequiredSignatures       uint8 `json:"numRequiredSignatures"`
	NumReadonlySignedAccounts   uint8 `json:"numReadonlySignedAccounts"`
	NumReadonlyUnsignedAccounts uint8 `json:"numReadonlyUnsignedAccounts"`
}

// Instruction is one compiled instruction: the invoking program's index into
// the account list, the operand account indices, and a base-58 payload.
type Instruction struct {
	ProgramIDIndex uint8   `json:"programIdIndex"`
	Accounts       []uint8 `json:"accounts"`
	Data           string  `json:"data"`
}

type Transactions []*Transaction

// ProgramID resolves an instruction's invoking program address, if its
// index is within bounds of the account list.
func (m *Message) ProgramID(inst *Instruction) (string, bool) {
	idx := int(inst.ProgramIDIndex)
	if idx >= len(m.AccountKeys) {
		return "", false
	}
	return m.AccountKeys[idx], true
}

// AccountAt resolves an operand index to its address, if in bounds.
func (m *Message) AccountAt(index int) (string, bool) {
	if index < 0 || index >= len(m.AccountKeys) {
		return "", false
	}
	return m.AccountKeys[index], true
}

// Signer returns the fee payer, the first account key.
func (tx *Transaction) Signer() string {
	if len(tx.Data.Message.AccountKeys) == 0 {
		return ""
	}
	return tx.Data.Message.AccountKeys[0]
}

// Signers returns every account that signed the transaction, per the header
// count. Without a header only the fee payer is assumed to have signed.
func (tx *Transaction) Signers() []string {
	keys := tx.Data.Message.AccountKeys
	if len(keys) == 0 {
		return nil
	}
	n := 1
	if h := tx.Data.Message.Header; h != nil {
		n = int(h.NumRequiredSignatures)
	}
	if n > len(keys) {
		n = len(keys)
	}
	return keys[:n]
}
