package eval

import (
	"context"
	"errors"
	"math"

	gomock "github.com/golang/mock/gomock"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/slowlang/tinyl/compiler/front"
	"github.com/slowlang/tinyl/compiler/ir"
)

func mustCompile(text string) *ir.Code {
	code, err := front.Compile(context.Background(), []byte(text))
	Expect(err).NotTo(HaveOccurred())

	return code
}

var _ = Describe("Run", func() {
	var (
		ctx      context.Context
		mockCtrl *gomock.Controller
		in       *MockInput
		out      *MockOutput
	)

	BeforeEach(func() {
		ctx = context.Background()
		mockCtrl = gomock.NewController(GinkgoT())
		in = NewMockInput(mockCtrl)
		out = NewMockOutput(mockCtrl)
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should read inputs and write results in order", func() {
		code := mustCompile("!a;!b;c=+3*ab;d=+c1;#d;#c.")

		gomock.InOrder(
			in.EXPECT().Read(ir.Var('a')).Return(int64(4), nil),
			in.EXPECT().Read(ir.Var('b')).Return(int64(5), nil),
			out.EXPECT().Write(ir.Var('d'), int64(24)).Return(nil),
			out.EXPECT().Write(ir.Var('c'), int64(23)).Return(nil),
		)

		Expect(Run(ctx, code, in, out)).To(Succeed())
	})

	It("should propagate read errors", func() {
		code := mustCompile("!a;#a.")

		in.EXPECT().Read(ir.Var('a')).Return(int64(0), errors.New("closed"))

		err := Run(ctx, code, in, out)
		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("closed"))
	})

	It("should propagate write errors", func() {
		code := mustCompile("a=7;#a;#a.")

		out.EXPECT().Write(ir.Var('a'), int64(7)).Return(errors.New("broken pipe"))

		err := Run(ctx, code, in, out)
		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("broken pipe"))
	})
})

var _ = Describe("Machine", func() {
	var (
		ctx context.Context
		m   Machine
		rec Record
	)

	BeforeEach(func() {
		ctx = context.Background()
		m = Machine{}
		rec = Record{}
	})

	It("should start variables at zero", func() {
		code := mustCompile("b=-*+1&2a58;#b;#a.")

		Expect(m.Run(ctx, code, &Ints{}, &rec)).To(Succeed())
		Expect(rec.Vars).To(Equal([]ir.Var{'b', 'a'}))
		Expect(rec.Values).To(Equal([]int64{-3, 0}))
	})

	It("should compute bitwise operators", func() {
		code := mustCompile("!a;b=^a7;c=&a6;#b;#c.")

		Expect(m.Run(ctx, code, &Ints{5}, &rec)).To(Succeed())
		Expect(rec.Values).To(Equal([]int64{2, 4}))
	})

	It("should fail when input is exhausted", func() {
		code := mustCompile("!a;!b;#b.")

		err := m.Run(ctx, code, &Ints{1}, &rec)
		Expect(err).To(MatchError(ErrNoInput))
		Expect(rec.Values).To(BeEmpty())
	})

	It("should reject undefined registers", func() {
		Expect(m.Step(ir.Bin(ir.OpAdd, 3, 1, 2), nil, nil)).NotTo(Succeed())
		Expect(m.Step(ir.Store('a', 1), nil, nil)).NotTo(Succeed())

		Expect(m.Step(ir.LoadI(1, 9), nil, nil)).To(Succeed())
		Expect(m.Step(ir.Store('a', 1), nil, nil)).To(Succeed())
		Expect(m.Var('a')).To(Equal(int64(9)))

		x, err := m.Reg(1)
		Expect(err).NotTo(HaveOccurred())
		Expect(x).To(Equal(int64(9)))
	})

	It("should hold registers with large numbers", func() {
		const big = ir.Reg(math.MaxInt)

		Expect(m.Step(ir.LoadI(big, 4), nil, nil)).To(Succeed())
		Expect(m.Step(ir.LoadI(big-1, 3), nil, nil)).To(Succeed())
		Expect(m.Step(ir.Bin(ir.OpMul, 1, big, big-1), nil, nil)).To(Succeed())

		x, err := m.Reg(1)
		Expect(err).NotTo(HaveOccurred())
		Expect(x).To(Equal(int64(12)))
	})

	It("should reject malformed instructions", func() {
		Expect(m.Step(ir.Instr{Op: ir.OpWrite}, nil, &rec)).NotTo(Succeed())
		Expect(rec.Values).To(BeEmpty())
	})
})
