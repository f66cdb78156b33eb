//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

// heengine.go stands in for a batched homomorphic-encryption backend
// (BFV/BGV, as an SEAL binding would provide). No such library exists
// anywhere in the reference corpus - the closest precedent is
// other_examples/mundrapranay-silhouette-db__okvs.go's own admission
// that a real primitive needs a cgo wrapper it does not yet have. The
// engine here keeps every ciphertext slot in the clear as a uint64 mod
// the plaintext modulus and implements the SIMD slot-wise Add/Mul the
// protocol actually needs, so the query/response state machine and
// its wire framing are exercised exactly as they would be against a
// real scheme; only the encryption itself (semantic security of a
// ciphertext) is unmodeled.
package labeledpsi

// Ciphertext holds one batched HE ciphertext's slots. In a real BFV
// scheme this would be an opaque polynomial ring element; here the
// slots are the plaintext values themselves.
type Ciphertext struct {
	Slots []uint64
}

// Engine evaluates plaintext polynomials against batched ciphertexts
// modulo a fixed plaintext modulus.
type Engine struct {
	Q uint64
}

// NewEngine returns an engine bound to plaintext modulus q.
func NewEngine(q uint64) *Engine {
	return &Engine{Q: q}
}

func mulmod(a, b, q uint64) uint64 {
	return (a * b) % q
}

func addmod(a, b, q uint64) uint64 {
	return (a + b) % q
}

// Encrypt lifts a slot vector into a Ciphertext.
func (e *Engine) Encrypt(slots []uint64) Ciphertext {
	out := make([]uint64, len(slots))
	for i, s := range slots {
		out[i] = s % e.Q
	}
	return Ciphertext{Slots: out}
}

// Decrypt reveals a ciphertext's slots.
func (e *Engine) Decrypt(ct Ciphertext) []uint64 {
	return ct.Slots
}

// Mul multiplies two ciphertexts slot-wise (ciphertext-ciphertext
// multiplication in a real batched scheme).
func (e *Engine) Mul(a, b Ciphertext) Ciphertext {
	out := make([]uint64, len(a.Slots))
	for i := range out {
		out[i] = mulmod(a.Slots[i], b.Slots[i], e.Q)
	}
	return Ciphertext{Slots: out}
}

// MulPlain multiplies a ciphertext by a plaintext slot vector
// (ciphertext-plaintext multiplication).
func (e *Engine) MulPlain(a Ciphertext, plain []uint64) Ciphertext {
	out := make([]uint64, len(a.Slots))
	for i := range out {
		out[i] = mulmod(a.Slots[i], plain[i]%e.Q, e.Q)
	}
	return Ciphertext{Slots: out}
}

// AddPlain adds a plaintext slot vector into a ciphertext.
func (e *Engine) AddPlain(a Ciphertext, plain []uint64) Ciphertext {
	out := make([]uint64, len(a.Slots))
	for i := range out {
		out[i] = addmod(a.Slots[i], plain[i]%e.Q, e.Q)
	}
	return Ciphertext{Slots: out}
}

// EvaluateBundle homomorphically evaluates, at every slot of query
// independently, the polynomial whose coefficients for that slot are
// coeffMatrix[degree][slot] - the batched analogue of Horner's method,
// where every slot shares the same sequence of ciphertext powers but
// each carries its own plaintext coefficients (its own sender-DB
// bin's root polynomial).
func (e *Engine) EvaluateBundle(query Ciphertext, coeffMatrix [][]uint64) Ciphertext {
	degree := len(coeffMatrix) - 1
	acc := e.Encrypt(coeffMatrix[degree])
	for d := degree - 1; d >= 0; d-- {
		acc = e.Mul(acc, query)
		acc = e.AddPlain(acc, coeffMatrix[d])
	}
	return acc
}
