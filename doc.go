// Package voxlink is a Mumble voice chat client core.
//
// A Client ties the pieces together: a transport dialer reaching the server
// over TLS or a WebSocket proxy, the control connection that performs the
// handshake and keeps the session alive, and two audio pipelines. Inbound
// Opus voice is decoded into a playback buffer that the platform's render
// callback drains one quantum at a time; captured quanta are encoded and sent
// as voice frames as soon as a full codec frame is available.
//
// # Getting Started
//
//	cfg, err := config.Load("voxlink.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	client, err := voxlink.New(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	client.Connection().PacketReceived.Subscribe(func(desc string) {
//	    fmt.Println(desc)
//	})
//
//	if err := client.Connect(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
// The audio side is driven by the host:
//
//	// capture callback
//	if err := client.FeedCapture(quantum); err != nil {
//	    // the send buffer is full; the quantum was dropped
//	}
//
//	// render callback
//	pcm := client.RenderQuantum(samplesPerChannel)
//
// Every package logs through the standard logrus logger; see the logging
// package for setup.
package voxlink
