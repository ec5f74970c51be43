package decode

import "errors"

// ErrIllegalInstruction is returned for any instruction word that does not
// match a known opcode/funct3/funct7 combination. The core engine turns
// this into an architectural IllegalInstruction trap; it is never a panic,
// since an illegal encoding is something a guest program can trigger.
var ErrIllegalInstruction = errors.New("decode: illegal instruction")
