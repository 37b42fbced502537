package main

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

// cmpOp diffs two Op values ignoring fields a given test case doesn't care
// about, grounded on the teacher's table-driven comparison style
// (arithmetic_comprehensive_test.go) generalized from encode-equality to
// decode-equality checks.
func cmpOp(t *testing.T, got, want Op, ignore ...string) {
	t.Helper()
	if diff := cmp.Diff(want, got, cmpopts.IgnoreFields(Op{}, ignore...)); diff != "" {
		t.Errorf("Decode mismatch (-want +got):\n%s", diff)
	}
}

func TestDecode32BitCore(t *testing.T) {
	cases := []struct {
		name string
		code []byte
		want Op
	}{
		{
			name: "ADDI",
			code: asmADDI(10, 0, 42), // addi a0, x0, 42
			want: Op{Class: ClassI, Mnem: OpADDI, Rd: 10, Rs1: 0, Imm: 42},
		},
		{
			name: "ADD",
			code: asmADD(5, 6, 7), // add t0, t1, t2
			want: Op{Class: ClassI, Mnem: OpADD, Rd: 5, Rs1: 6, Rs2: 7},
		},
		{
			name: "SUB",
			code: asmSUB(5, 6, 7),
			want: Op{Class: ClassI, Mnem: OpSUB, Rd: 5, Rs1: 6, Rs2: 7},
		},
		{
			name: "ADDW sign-extending word form",
			code: asmADDW(6, 5, 0),
			want: Op{Class: ClassI, Mnem: OpADDW, Rd: 6, Rs1: 5, Rs2: 0},
		},
		{
			name: "LUI upper immediate",
			code: asmLUI(5, 0x80000),
			want: Op{Class: ClassI, Mnem: OpLUI, Rd: 5, Imm: -0x80000000},
		},
		{
			name: "AUIPC",
			code: asmAUIPC(10, 1),
			want: Op{Class: ClassI, Mnem: OpAUIPC, Rd: 10, Imm: 0x1000},
		},
		{
			name: "BEQ taken-forward branch",
			code: asmBEQ(10, 11, 8),
			want: Op{Class: ClassI, Mnem: OpBEQ, Rs1: 10, Rs2: 11, Imm: 8},
		},
		{
			name: "BLT negative (backward) branch",
			code: asmBLT(10, 11, -4),
			want: Op{Class: ClassI, Mnem: OpBLT, Rs1: 10, Rs2: 11, Imm: -4},
		},
		{
			name: "JAL plain jump (rd=x0)",
			code: asmJAL(0, 16),
			want: Op{Class: ClassI, Mnem: OpJAL, Rd: 0, Imm: 16},
		},
		{
			name: "JAL call (rd=ra)",
			code: asmJAL(1, -100),
			want: Op{Class: ClassI, Mnem: OpJAL, Rd: 1, Imm: -100},
		},
		{
			name: "JALR",
			code: asmJALR(0, 5, 0),
			want: Op{Class: ClassI, Mnem: OpJALR, Rd: 0, Rs1: 5, Imm: 0},
		},
		{
			name: "LW",
			code: asmLW(10, 2, 16),
			want: Op{Class: ClassI, Mnem: OpLW, Rd: 10, Rs1: 2, Imm: 16},
		},
		{
			name: "SW",
			code: asmSW(2, 10, -8),
			want: Op{Class: ClassI, Mnem: OpSW, Rs1: 2, Rs2: 10, Imm: -8},
		},
		{
			name: "MUL",
			code: asmMUL(10, 11, 12),
			want: Op{Class: ClassM, Mnem: OpMUL, Rd: 10, Rs1: 11, Rs2: 12},
		},
		{
			name: "DIV",
			code: asmDIV(7, 5, 6),
			want: Op{Class: ClassM, Mnem: OpDIV, Rd: 7, Rs1: 5, Rs2: 6},
		},
		{
			name: "REM",
			code: asmREM(28, 5, 6),
			want: Op{Class: ClassM, Mnem: OpREM, Rd: 28, Rs1: 5, Rs2: 6},
		},
		{
			name: "ECALL",
			code: asmECALL(),
			want: Op{Class: ClassI, Mnem: OpECALL},
		},
		{
			name: "EBREAK",
			code: asmEBREAK(),
			want: Op{Class: ClassI, Mnem: OpEBREAK},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Decode(tc.code, 0x1000)
			if err != nil {
				t.Fatalf("Decode(%s) returned error: %v", tc.name, err)
			}
			tc.want.Addr = 0x1000
			tc.want.Len = 4
			cmpOp(t, got, tc.want, "RawCompressed")
		})
	}
}

func TestDecodeIllegal32(t *testing.T) {
	_, err := Decode(asmIllegal32(), 0x2000)
	if !errors.Is(err, ErrIllegalEncoding) {
		t.Fatalf("want ErrIllegalEncoding, got %v", err)
	}
}

func TestDecodeTruncated(t *testing.T) {
	_, err := Decode([]byte{0x13}, 0x2000)
	if !errors.Is(err, ErrIllegalEncoding) {
		t.Fatalf("want ErrIllegalEncoding for truncated input, got %v", err)
	}
}

func TestDecodeCompressed(t *testing.T) {
	cases := []struct {
		name string
		code []byte
		want Op
	}{
		{
			name: "C.NOP expands to ADDI x0, x0, 0",
			code: asmCNOP(),
			want: Op{Class: ClassI, Mnem: OpADDI, Rd: 0, Rs1: 0, Imm: 0},
		},
		{
			name: "C.LI expands to ADDI rd, x0, imm",
			code: asmCLI(10, -5),
			want: Op{Class: ClassI, Mnem: OpADDI, Rd: 10, Rs1: 0, Imm: -5},
		},
		{
			name: "C.J expands to JAL x0, offset",
			code: asmCJ(-22),
			want: Op{Class: ClassI, Mnem: OpJAL, Rd: 0, Imm: -22},
		},
		{
			name: "C.BEQZ expands to BEQ rs1', x0, offset",
			code: asmCBEQZ(2, 12), // rs1' = 2 -> x10
			want: Op{Class: ClassI, Mnem: OpBEQ, Rs1: 10, Rs2: 0, Imm: 12},
		},
		{
			name: "C.MV expands to ADD rd, x0, rs2",
			code: asmCMV(10, 11),
			want: Op{Class: ClassI, Mnem: OpADD, Rd: 10, Rs1: 0, Rs2: 11},
		},
		{
			name: "C.JR expands to JALR x0, 0(rs1)",
			code: asmCJR(5),
			want: Op{Class: ClassI, Mnem: OpJALR, Rd: 0, Rs1: 5, Imm: 0},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Decode(tc.code, 0x3000)
			if err != nil {
				t.Fatalf("Decode(%s) returned error: %v", tc.name, err)
			}
			if got.Len != 2 {
				t.Errorf("compressed instruction %s: Len = %d, want 2", tc.name, got.Len)
			}
			if !got.RawCompressed {
				t.Errorf("compressed instruction %s: RawCompressed = false", tc.name)
			}
			tc.want.Addr = 0x3000
			tc.want.Len = 2
			tc.want.RawCompressed = true
			cmpOp(t, got, tc.want)
		})
	}
}

func TestDecodeCompressedIllegal(t *testing.T) {
	// C.JR/C.MV encoding with rd == 0 and the high bit clear, rs2 == 0:
	// quadrant 2, funct3 4, bit12 clear, rd=0, rs2=0 is reserved.
	code := le16(uint16(2) | uint16(4)<<13)
	_, err := Decode(code, 0x4000)
	if !errors.Is(err, ErrIllegalEncoding) {
		t.Fatalf("want ErrIllegalEncoding, got %v", err)
	}
}
