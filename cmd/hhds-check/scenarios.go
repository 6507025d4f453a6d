// This file is distributed under the BSD 3-Clause License. See LICENSE for details.

package main

import (
	"context"
	"fmt"
	"time"

	"github.com/datawire/dlib/dlog"
	"github.com/spf13/cobra"

	"github.com/masc-ucsc/hhds/lib/forest"
	"github.com/masc-ucsc/hhds/lib/hhdsprim"
	"github.com/masc-ucsc/hhds/lib/textui"
	"github.com/masc-ucsc/hhds/lib/tree"
)

// chainBuildStats reports how far the linear-chain build has gotten;
// textui.Progress logs it on a timer so a multi-million-node --chain-len
// run isn't silent.
type chainBuildStats struct {
	built, total int
}

func (s chainBuildStats) String() string {
	return fmt.Sprintf("linear chain: built %d/%d nodes", s.built, s.total)
}

func newScenariosCommand() *cobra.Command {
	var chainLen int
	var arity, depth int

	cmd := &cobra.Command{
		Use:   "scenarios",
		Short: "Build a large linear chain and a perfect n-ary tree, and verify traversal order",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if err := runLinearChain(ctx, chainLen); err != nil {
				return err
			}
			if err := runPerfectTree(ctx, arity, depth); err != nil {
				return err
			}
			if err := runForestSubtreeFollowing(ctx); err != nil {
				return err
			}
			fmt.Println("scenarios: ok")
			return nil
		},
	}
	cmd.Flags().IntVar(&chainLen, "chain-len", 1_000_000, "number of nodes in the linear-chain scenario")
	cmd.Flags().IntVar(&arity, "arity", 4, "branching factor of the perfect-tree scenario")
	cmd.Flags().IntVar(&depth, "depth", 5, "depth of the perfect-tree scenario")
	return cmd
}

func runLinearChain(ctx context.Context, n int) error {
	tr := tree.New[int]()
	progress := textui.NewProgress[chainBuildStats](ctx, dlog.LogLevelDebug, 2*time.Second)
	defer progress.Done()

	cur := tr.AddRoot(ctx, 0)
	progress.Set(chainBuildStats{built: 1, total: n})
	for i := 1; i < n; i++ {
		cur = tr.AddChild(ctx, cur, i)
		progress.Set(chainBuildStats{built: i + 1, total: n})
	}

	count := 0
	var prev = -1
	ok := true
	tr.PreOrder(tr.Root())(func(pos hhdsprim.TreePos) bool {
		v := tr.Data(pos)
		if v != prev+1 {
			ok = false
			return false
		}
		prev = v
		count++
		return true
	})
	if !ok || count != n {
		return fmt.Errorf("linear chain of %d nodes did not preorder-traverse in insertion order", n)
	}
	dlog.Infof(ctx, "linear chain: %d nodes, %d chunks, %v", n, tr.NumChunks(), textui.IEC(tr.SizeBytes(), "B"))
	return nil
}

func runPerfectTree(ctx context.Context, arity, depth int) error {
	tr := tree.New[int]()
	root := tr.AddRoot(ctx, 0)
	counter := 1
	var build func(pos hhdsprim.TreePos, d int)
	build = func(pos hhdsprim.TreePos, d int) {
		if d == 0 {
			return
		}
		for i := 0; i < arity; i++ {
			c := tr.AddChild(ctx, pos, counter)
			counter++
			build(c, d-1)
		}
	}
	build(root, depth)

	var pre, post []int
	tr.PreOrder(root)(func(pos hhdsprim.TreePos) bool { pre = append(pre, tr.Data(pos)); return true })
	tr.PostOrder(root)(func(pos hhdsprim.TreePos) bool { post = append(post, tr.Data(pos)); return true })
	if len(pre) != len(post) {
		return fmt.Errorf("perfect tree: pre-order visited %d positions, post-order visited %d", len(pre), len(post))
	}
	dlog.Infof(ctx, "perfect tree: arity=%d depth=%d, %d nodes, %d chunks", arity, depth, len(pre), tr.NumChunks())
	return nil
}

// cellCursor is the payload a hierarchy-instance scenario stores: a
// name for verifying traversal order, plus the sub-tree it instances
// (if any).
type cellCursor struct {
	Name     string
	Instance hhdsprim.ContainerRef
}

func cellCursorInstance(c cellCursor) (hhdsprim.ContainerRef, bool) {
	if c.Instance.IsInvalid() {
		return 0, false
	}
	return c.Instance, true
}

// runForestSubtreeFollowing builds two trees that mutually instance
// each other and verifies the forest-aware pre-order walk descends
// into each at most once before the cycle is cut.
func runForestSubtreeFollowing(ctx context.Context) error {
	f := forest.New[cellCursor]()
	a := f.CreateTree(ctx)
	b := f.CreateTree(ctx)
	aTr, ok := f.GetTree(a)
	if !ok {
		return fmt.Errorf("forest subtree following: tree a is not alive right after create_tree")
	}
	bTr, ok := f.GetTree(b)
	if !ok {
		return fmt.Errorf("forest subtree following: tree b is not alive right after create_tree")
	}

	aRoot := aTr.AddRoot(ctx, cellCursor{Name: "a"})
	aChild := aTr.AddChild(ctx, aRoot, cellCursor{Name: "ac", Instance: b})
	bRoot := bTr.AddRoot(ctx, cellCursor{Name: "b"})
	bChild := bTr.AddChild(ctx, bRoot, cellCursor{Name: "bc", Instance: a})
	f.AddSubtreeRef(ctx, a, aChild, b)
	f.AddSubtreeRef(ctx, b, bChild, a)

	want := []string{"a", "ac", "b", "bc", "a", "ac"}
	var got []string
	f.PreOrder(a, aRoot, true, cellCursorInstance)(func(ref hhdsprim.ContainerRef, pos hhdsprim.TreePos) bool {
		tr, _ := f.GetTree(ref)
		got = append(got, tr.Data(pos).Name)
		return true
	})
	if len(got) != len(want) {
		return fmt.Errorf("forest subtree following: got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			return fmt.Errorf("forest subtree following: got %v, want %v", got, want)
		}
	}
	dlog.Infof(ctx, "forest subtree following: %v", got)
	return nil
}
