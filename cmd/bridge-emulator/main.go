package main

import (
	"encoding/json"
	"flag"
	"log"
	"math"
	"math/rand"
	"net"
	"time"

	"github.com/chrissnell/aqimonitor/internal/sensor"
)

func main() {
	var (
		port     = flag.String("port", "8123", "TCP port to listen on")
		interval = flag.Duration("interval", time.Second, "Interval between frames")
		noBMP    = flag.Bool("no-bmp", false, "Leave pressure and temperature out of the frames")
	)
	flag.Parse()

	log.Printf("Dust sensor bridge emulator")
	log.Printf("Listening on port %s, sending frames every %v", *port, *interval)

	listener, err := net.Listen("tcp", ":"+*port)
	if err != nil {
		log.Fatal("Failed to listen:", err)
	}
	defer listener.Close()

	for {
		conn, err := listener.Accept()
		if err != nil {
			log.Printf("Failed to accept connection: %v", err)
			continue
		}

		log.Printf("Client connected from %s", conn.RemoteAddr())
		go handleConnection(conn, *interval, !*noBMP)
	}
}

func handleConnection(conn net.Conn, interval time.Duration, withBMP bool) {
	defer conn.Close()

	encoder := json.NewEncoder(conn)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	start := time.Now()
	for ; ; <-ticker.C {
		frame := generateFrame(time.Since(start), withBMP)
		if err := encoder.Encode(frame); err != nil {
			log.Printf("Failed to send frame: %v", err)
			return
		}
		log.Printf("Sent: adc=%d", *frame.ADC)
	}
}

// generateFrame simulates a room where dust builds up and settles on a
// ten-minute cycle, with an occasional spike from cooking or cleaning.
func generateFrame(elapsed time.Duration, withBMP bool) sensor.Frame {
	cycle := math.Sin(2 * math.Pi * elapsed.Minutes() / 10)
	adc := 900 + 250*cycle + rand.NormFloat64()*30
	if rand.Float64() < 0.01 {
		adc += 1500 + rand.Float64()*1000
	}
	adc = math.Max(0, math.Min(65535, adc))

	raw := uint16(adc)
	frame := sensor.Frame{ADC: &raw}

	if withBMP {
		pressure := 101325 + 150*math.Sin(2*math.Pi*elapsed.Hours()/24) + rand.Float64()*20 - 10
		temperature := 24.5 + rand.Float64()*0.4 - 0.2 // reads high from the bridge's own heat
		frame.PressurePa = &pressure
		frame.TemperatureC = &temperature
	}

	return frame
}
