package litgrammar

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_Extract_SingleBlock(t *testing.T) {
	assert := assert.New(t)

	input := "Some prose about the grammar.\n\n" +
		"```lrforge\n" +
		"rule $S : ('a')\n" +
		"```\n"

	got := string(Extract([]byte(input)))
	assert.Equal("rule $S : ('a')\n", got)
}

func Test_Extract_MultipleBlocksConcatenateInOrder(t *testing.T) {
	assert := assert.New(t)

	input := "intro\n\n" +
		"```lrforge\n" +
		"rule $S : (A)\n" +
		"```\n" +
		"more prose in between\n" +
		"```lrforge\n" +
		"rule A : ('a')\n" +
		"```\n"

	got := string(Extract([]byte(input)))
	assert.Equal("rule $S : (A)\nrule A : ('a')\n", got)
}

func Test_Extract_IgnoresOtherFences(t *testing.T) {
	assert := assert.New(t)

	input := "```go\n" +
		"fmt.Println(\"not grammar\")\n" +
		"```\n" +
		"```lrforge\n" +
		"rule $S : ('a')\n" +
		"```\n"

	got := string(Extract([]byte(input)))
	assert.Equal("rule $S : ('a')\n", got)
}

func Test_Extract_NoFencesYieldsEmpty(t *testing.T) {
	assert := assert.New(t)

	got := Extract([]byte("just some prose, no code at all\n"))
	assert.Empty(got)
}
