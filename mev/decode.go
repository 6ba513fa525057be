package mev

import (
	"bytes"

	bin "github.com/gagliardetto/binary"
	"github.com/mr-tron/base58"

	"mevscan/types"
)

// System program transfer discriminator, little-endian u32 2.
var transferDiscriminator = []byte{2, 0, 0, 0}

// DecodeTransferLamports decodes a base-58 instruction payload into a
// transfer amount. Three layouts are seen in the wild:
//
//	12 bytes: [2,0,0,0] discriminator + u64 LE amount
//	 8 bytes: bare u64 LE amount
//	>=12 bytes: amount at bytes 4..12
//
// Anything else — invalid base-58 included — yields (0, false). Absence of
// an amount is an expected outcome, not an error.
func DecodeTransferLamports(data string) (uint64, bool) {
	raw, err := base58.Decode(data)
	if err != nil {
		return 0, false
	}

	var payload []byte
	switch {
	case len(raw) == 12 && bytes.Equal(raw[:4], transferDiscriminator):
		payload = raw[4:12]
	case len(raw) == 8:
		payload = raw
	case len(raw) >= 12:
		payload = raw[4:12]
	default:
		return 0, false
	}

	amount, err := bin.NewBinDecoder(payload).ReadUint64(bin.LE)
	if err != nil {
		return 0, false
	}
	return amount, true
}

// transferLamports decodes the payload of a native transfer instruction,
// checking that the invoking program is the system program first.
func (d *Detector) transferLamports(msg *types.Message, inst *types.Instruction) (uint64, bool) {
	programID, ok := msg.ProgramID(inst)
	if !ok || !d.registry.IsSystemProgram(programID) {
		return 0, false
	}
	return DecodeTransferLamports(inst.Data)
}

// isSmallTransfer reports whether the instruction is a native transfer below
// the configured noise threshold.
func (d *Detector) isSmallTransfer(msg *types.Message, inst *types.Instruction) bool {
	amount, ok := d.transferLamports(msg, inst)
	return ok && amount > 0 && amount < d.cfg.SmallTransferThreshold
}

// totalTransferLamports sums every decodable native transfer in the
// transaction above the noise threshold.
func (d *Detector) totalTransferLamports(tx *types.Transaction) uint64 {
	var total uint64
	msg := &tx.Data.Message
	for i := range msg.Instructions {
		amount, ok := d.transferLamports(msg, &msg.Instructions[i])
		if ok && amount > d.cfg.SmallTransferThreshold {
			total += amount
		}
	}
	return total
}
