// This file is distributed under the BSD 3-Clause License. See LICENSE for details.

package main

import (
	"context"
	"fmt"

	"github.com/datawire/dlib/dlog"
	"github.com/spf13/cobra"

	"github.com/masc-ucsc/hhds/lib/forest"
	"github.com/masc-ucsc/hhds/lib/graph"
	"github.com/masc-ucsc/hhds/lib/hhdsprim"
	"github.com/masc-ucsc/hhds/lib/textui"
)

func newPropertiesCommand() *cobra.Command {
	var fanout int

	cmd := &cobra.Command{
		Use:   "properties",
		Short: "Exercise graph edge-symmetry/idempotence and forest refcount/tombstone properties",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if err := runGraphProperties(ctx, fanout); err != nil {
				return err
			}
			if err := runForestProperties(ctx); err != nil {
				return err
			}
			fmt.Println("properties: ok")
			return nil
		},
	}
	cmd.Flags().IntVar(&fanout, "fanout", 64, "number of edges to add from one hub node, forcing overflow/spill promotion")
	return cmd
}

func runGraphProperties(ctx context.Context, fanout int) error {
	g := graph.New()
	hub := g.CreateNode(ctx)

	leaves := make([]hhdsprim.VertexID, fanout)
	for i := range leaves {
		leaves[i] = g.CreateNode(ctx)
		g.AddEdge(ctx, hub, leaves[i])
		g.AddEdge(ctx, hub, leaves[i]) // idempotence
	}
	if got := g.GetNumPinEdges(hub); got != fanout {
		return fmt.Errorf("graph: hub has %d edges, want %d", got, fanout)
	}
	for _, l := range leaves {
		drivers := 0
		g.Drivers(l)(func(hhdsprim.VertexID) bool { drivers++; return true })
		if drivers != 1 {
			return fmt.Errorf("graph: leaf %v has %d drivers, want 1", l, drivers)
		}
	}

	for _, l := range leaves {
		g.DelEdge(ctx, hub, l)
	}
	if got := g.GetNumPinEdges(hub); got != 0 {
		return fmt.Errorf("graph: hub has %d edges after deleting all of them, want 0", got)
	}
	dlog.Infof(ctx, "graph properties: %d edges added/idempotent/removed, %v", fanout, textui.IEC(g.SizeBytes(), "B"))
	return nil
}

func runForestProperties(ctx context.Context) error {
	f := forest.New[string]()

	caller := f.CreateTree(ctx)
	callee := f.CreateTree(ctx)
	if rc := f.RefCount(callee); rc != 0 {
		return fmt.Errorf("forest: freshly created callee has refcount %d, want 0", rc)
	}
	callerRoot, ok := f.GetTree(caller)
	if !ok {
		return fmt.Errorf("forest: caller ref %v is not alive right after create_tree", caller)
	}
	callerRootPos := callerRoot.AddRoot(ctx, "caller-root")
	calleeTree, ok := f.GetTree(callee)
	if !ok {
		return fmt.Errorf("forest: callee ref %v is not alive right after create_tree", callee)
	}
	calleeTree.AddRoot(ctx, "callee-root")

	f.AddSubtreeRef(ctx, caller, callerRootPos, callee)
	if rc := f.RefCount(callee); rc != 1 {
		return fmt.Errorf("forest: callee refcount is %d after one subtree ref, want 1", rc)
	}

	if f.DeleteTree(ctx, callee) {
		return fmt.Errorf("forest: delete_tree(callee) succeeded while still referenced")
	}
	if !f.IsAlive(callee) {
		return fmt.Errorf("forest: callee died on a failed delete_tree")
	}

	f.DeleteSubtreeRef(ctx, caller, callerRootPos, callee)
	if f.RefCount(callee) != 0 {
		return fmt.Errorf("forest: callee refcount nonzero after its last reference was dropped")
	}

	if !f.DeleteTree(ctx, callee) {
		return fmt.Errorf("forest: delete_tree(callee) failed with refcount 0")
	}
	if f.IsAlive(callee) {
		return fmt.Errorf("forest: callee still alive after a successful delete_tree")
	}
	if _, ok := f.GetTree(callee); ok {
		return fmt.Errorf("forest: get_tree succeeded on a tombstoned ref")
	}

	reused := f.CreateTree(ctx)
	if reused == callee {
		return fmt.Errorf("forest: a tombstoned ref %v was reused by a later create_tree", callee)
	}
	dlog.Infof(ctx, "forest properties: refcount and permanent-tombstone checks passed")
	return nil
}
