package mask

import "testing"

func TestDisplay(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"dfwedasfwes@wqe.com", "d*****@****.***"},
		{"  bob@example.org ", "b*****@****.***"},
		{"张三@example.cn", "张*****@****.***"},
		{"plain-name", "plain-name"},
		{"@nolocal.com", "@nolocal.com"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := Display(tt.in); got != tt.want {
			t.Errorf("Display(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestInText(t *testing.T) {
	got := InText("alice@a.io、bob@b.io 加入房间")
	want := "a*****@****.***、b*****@****.*** 加入房间"
	if got != want {
		t.Fatalf("InText = %q, want %q", got, want)
	}

	if got := InText("no addresses here"); got != "no addresses here" {
		t.Fatalf("text without emails changed: %q", got)
	}
}
