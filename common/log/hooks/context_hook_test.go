package hooks

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const stack = `goroutine 1 [running]:
runtime/debug.Stack(0xc000010000, 0x1, 0x1)
	/usr/local/go/src/runtime/debug/stack.go:24 +0x9d
github.com/twitter/ditto/common/log/hooks.contextHook.Fire(0xc00008e000, 0x0, 0x0)
	/go/src/github.com/twitter/ditto/common/log/hooks/context_hook.go:23 +0x26
github.com/sirupsen/logrus.LevelHooks.Fire(0xc00007c000, 0x4, 0xc00008e000, 0x0, 0x0)
	/go/pkg/mod/github.com/sirupsen/logrus@v1.4.2/hooks.go:28 +0x91
github.com/sirupsen/logrus.(*Entry).log(0xc00008e000, 0x4, 0xc0000a0000, 0x10)
	/go/pkg/mod/github.com/sirupsen/logrus@v1.4.2/entry.go:230 +0x1a5
github.com/twitter/ditto/planner/optimizer.(*JointOptimizer).optimize(0xc0000b0000)
	/go/src/github.com/twitter/ditto/planner/optimizer/joint_optimization.go:121 +0x3f2
main.main()
	/go/src/github.com/twitter/ditto/binaries/dittoplan/main.go:20 +0x20
`

func TestCallSiteSkipsLogrusFrames(t *testing.T) {
	assert.Equal(t, "planner/optimizer/joint_optimization.go:121", callSite(stack))
}

func TestCallSiteWithoutHookFrame(t *testing.T) {
	assert.Equal(t, "", callSite("goroutine 1 [running]:\nmain.main()\n\t/tmp/main.go:3 +0x1\n"))
}
