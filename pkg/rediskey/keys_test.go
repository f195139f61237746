package rediskey

import "testing"

func TestKeys(t *testing.T) {
	if got := VoteChannel("264811613708746752"); got != "dbgg:votes:264811613708746752" {
		t.Errorf("VoteChannel = %q", got)
	}
	if got := PostLock("264811613708746752", 3); got != "dbgg:post:264811613708746752:3:lock" {
		t.Errorf("PostLock = %q", got)
	}
}
