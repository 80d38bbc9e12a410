package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/chrissnell/aqimonitor/pkg/aqi"
)

func main() {
	pm10 := flag.Bool("pm10", false, "Treat densities as PM10 instead of PM2.5")
	table := flag.Bool("table", false, "Print the PM2.5 breakpoint tables and exit")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [-pm10] <density μg/m³>...\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if *table {
		printTables()
		return
	}

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(1)
	}

	for _, arg := range flag.Args() {
		density, err := strconv.ParseFloat(arg, 64)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error parsing density %q: %v\n", arg, err)
			os.Exit(1)
		}

		if *pm10 {
			idx := aqi.CalculatePM10(density)
			fmt.Printf("PM10 %.1f μg/m³\n", density)
			fmt.Printf("  AQI:       %d\n", idx)
			fmt.Printf("  Category:  %s\n", aqi.Category(idx))
			continue
		}

		r := aqi.Evaluate(density)
		fmt.Printf("PM2.5 %.1f μg/m³\n", density)
		fmt.Printf("  AQI:       %d\n", r.Index)
		fmt.Printf("  Category:  %s\n", r.Category)
		fmt.Printf("  Web color: %s (%d, %d, %d)\n", r.WebColor.Hex(), r.WebColor.R, r.WebColor.G, r.WebColor.B)
		fmt.Printf("  LED color: %s (%d, %d, %d)\n", r.LEDColor.Hex(), r.LEDColor.R, r.LEDColor.G, r.LEDColor.B)
	}
}

func printTables() {
	fmt.Printf("%-8s %-20s %-10s %-12s %-12s\n", "Row", "Density (μg/m³)", "AQI", "Web", "LED")
	for i := range aqi.WebColors {
		web := aqi.WebColors[i]
		led := aqi.LEDColors[i]
		fmt.Printf("%-8d %8.1f - %-9.1f %4d-%-5d %-12s %-12s\n",
			i, web.RangeLo, web.RangeHi, web.ScaleLo, web.ScaleHi, web.Color.Hex(), led.Color.Hex())
	}
}
