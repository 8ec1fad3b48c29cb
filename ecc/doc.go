// Package ecc implements the error correcting codes used to protect NAND
// pages while they are loaded.
//
// A page is split into steps of StepSize bytes. Each step has Bytes code
// bytes stored in the OOB area. On read the loader calculates a fresh code
// over the step and hands both codes to Correct:
//
//	s, _ := ecc.NewHamming(256)
//	calc := make([]byte, s.Bytes())
//	s.Calculate(step, calc)
//	res := s.Correct(step, stored, calc)
//	if res.Status == ecc.Uncorrectable {
//	    // data is left exactly as read
//	}
//
// Two schemes are provided:
//
//   - Hamming: one bit correction, two bit detection, three code bytes per
//     256 or 512 byte step.
//   - BCH: t bit correction over GF(2^m), ceil(m*t/8) code bytes per step.
//
// Both give an erased step (all 0xFF) an all 0xFF code, so blank pages read
// back clean.
package ecc
