package task

import (
	"context"
	"errors"
	"testing"

	"netmcp/internal/domain"
	"netmcp/internal/driver"
)

func iosDevice() domain.Device {
	return domain.Device{Name: "r1", Hostname: "10.0.0.1", Platform: "ios"}
}

func TestGetters_RawOutputKeyedByGetter(t *testing.T) {
	c := driver.NewStaticConnector(driver.StaticFixtures{
		"r1": {
			"show version":    "Cisco IOS, Version 15.2",
			"show interfaces": "GigabitEthernet0/1 is up",
		},
	})
	f := NewFactory(c)

	out, err := f.Getters([]string{"facts", "interfaces"}).Run(context.Background(), iosDevice())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	m := out.(map[string]string)
	if m["facts"] != "Cisco IOS, Version 15.2" {
		t.Errorf("facts = %q", m["facts"])
	}
	if m["interfaces"] != "GigabitEthernet0/1 is up" {
		t.Errorf("interfaces = %q", m["interfaces"])
	}
}

func TestGetters_UnknownMapping(t *testing.T) {
	f := NewFactory(driver.NewStaticConnector(driver.StaticFixtures{"r1": {}}))

	_, err := f.Getters([]string{"probes"}).Run(context.Background(), iosDevice())
	if err == nil {
		t.Fatal("expected error for getter without command mapping")
	}
}

func TestGetConfig_SourceMapping(t *testing.T) {
	c := driver.NewStaticConnector(driver.StaticFixtures{
		"r1": {"show startup-config": "hostname r1\n!"},
	})
	f := NewFactory(c)

	out, err := f.GetConfig("startup").Run(context.Background(), iosDevice())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	m := out.(map[string]string)
	if m["startup"] != "hostname r1\n!" {
		t.Errorf("startup = %q", m["startup"])
	}

	// candidate is junos-only.
	if _, err := f.GetConfig("candidate").Run(context.Background(), iosDevice()); err == nil {
		t.Error("candidate config on ios must fail")
	}
}

func TestShowCommands_PartialFailureIsStepError(t *testing.T) {
	c := driver.NewStaticConnector(driver.StaticFixtures{
		"r1": {"show version": "v15.2"}, // second command is not scripted
	})
	f := NewFactory(c)

	_, err := f.ShowCommands([]string{"show version", "show bogus"}).Run(context.Background(), iosDevice())
	var stepErr *domain.StepError
	if !errors.As(err, &stepErr) {
		t.Fatalf("got %v, want StepError", err)
	}
	if stepErr.Step != "show bogus" || stepErr.Index != 1 {
		t.Errorf("failed step = %q index %d", stepErr.Step, stepErr.Index)
	}
	if len(stepErr.Completed) != 1 || stepErr.Completed[0].Output != "v15.2" {
		t.Errorf("completed = %v, must keep prior output", stepErr.Completed)
	}
}

func TestConfigCommands_BracketsWithMode(t *testing.T) {
	c := driver.NewStaticConnector(driver.StaticFixtures{
		"r1": {
			"configure terminal": "",
			"hostname r1-new":    "",
			"end":                "",
		},
	})
	f := NewFactory(c)

	out, err := f.ConfigCommands([]string{"hostname r1-new"}).Run(context.Background(), iosDevice())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	steps := out.(map[string]any)["steps"].([]domain.StepResult)
	if len(steps) != 3 {
		t.Fatalf("got %d steps, want enter + command + exit", len(steps))
	}
	if steps[0].Step != "configure terminal" || steps[2].Step != "end" {
		t.Errorf("steps = %v", steps)
	}
}

func TestConfigCommands_FailureStopsPush(t *testing.T) {
	c := driver.NewStaticConnector(driver.StaticFixtures{
		"r1": {"configure terminal": ""}, // the config line itself fails
	})
	f := NewFactory(c)

	_, err := f.ConfigCommands([]string{"bad command", "never runs"}).Run(context.Background(), iosDevice())
	var stepErr *domain.StepError
	if !errors.As(err, &stepErr) {
		t.Fatalf("got %v, want StepError", err)
	}
	if stepErr.Step != "bad command" {
		t.Errorf("failed step = %q", stepErr.Step)
	}
	if len(stepErr.Completed) != 1 {
		t.Errorf("completed = %v, want only the mode enter", stepErr.Completed)
	}
}

func TestPing_PlatformTemplate(t *testing.T) {
	c := driver.NewStaticConnector(driver.StaticFixtures{
		"j1": {"ping 8.8.8.8 rapid count 5": "!!!!! 0% packet loss"},
	})
	f := NewFactory(c)

	out, err := f.Ping("8.8.8.8").Run(context.Background(), domain.Device{Name: "j1", Platform: "junos"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if out.(string) != "!!!!! 0% packet loss" {
		t.Errorf("output = %v", out)
	}
}

func TestPushFile(t *testing.T) {
	c := driver.NewStaticConnector(driver.StaticFixtures{"r1": {}})
	f := NewFactory(c)

	out, err := f.PushFile([]byte("payload"), "flash:/cfg.txt").Run(context.Background(), iosDevice())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if out.(string) != "uploaded 7 bytes to flash:/cfg.txt" {
		t.Errorf("output = %v", out)
	}
	if got := c.Uploads("r1"); len(got) != 1 {
		t.Errorf("uploads = %v", got)
	}
}

func TestGetterCommand_PlatformAliases(t *testing.T) {
	cmd, err := GetterCommand("nxos_ssh", "facts")
	if err != nil {
		t.Fatalf("GetterCommand: %v", err)
	}
	if cmd != "show version" {
		t.Errorf("cmd = %q", cmd)
	}
}
