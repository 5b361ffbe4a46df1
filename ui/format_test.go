package ui

import (
	"testing"

	"github.com/fatih/color"
)

func TestFormatReply(t *testing.T) {
	old := color.NoColor
	color.NoColor = true
	defer func() { color.NoColor = old }()

	testCases := []struct {
		name string
		in   string
		want string
	}{
		{name: "plain text", in: "hello", want: "hello"},
		{name: "bold span", in: "this is **important** stuff", want: "this is important stuff"},
		{name: "multiple bold spans", in: "**a** and **b**", want: "a and b"},
		{name: "unclosed marker left alone", in: "dangling **marker", want: "dangling **marker"},
		{name: "escaped newlines", in: "line one\\nline two", want: "line one\nline two"},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			if got := FormatReply(testCase.in); got != testCase.want {
				t.Errorf("FormatReply(%q) = %q, want %q", testCase.in, got, testCase.want)
			}
		})
	}
}

func TestSenderFromRole(t *testing.T) {
	testCases := []struct {
		role string
		want Sender
	}{
		{"user", SenderUser},
		{"assistant", SenderAI},
		{"system", SenderAI},
		{"", SenderAI},
	}

	for _, testCase := range testCases {
		if got := senderFromRole(testCase.role); got != testCase.want {
			t.Errorf("senderFromRole(%q) = %q, want %q", testCase.role, got, testCase.want)
		}
	}
}
