/*
Package analyzer evaluates the source files of a folder and produces a report.

# Pipeline

	discover -> read -> dispatch (chunk, cache, evaluate) -> collect -> report

Files are discovered by walking the folder recursively. A file is selected
when its base name matches the glob pattern (default "*.cs") and its path
does not match the exclusion expression, which by default skips generated
C# files:

	\.AssemblyAttributes\.cs|\.AssemblyInfo\.cs|\.Designer\.cs

Hidden directories are not descended into.

# Concurrency

Each file is handled by one worker from an errgroup pool bounded by
Config.Workers. Within a file, chunks are evaluated strictly in order by the
dispatcher. Results are collected per file and concatenated in discovery
order, so the report is ordered by path and then by start line regardless of
which worker finished first.

# Errors

A file that cannot be read is recorded in Statistics.ErrorMessages and the
run continues. Any error from the dispatcher stops the remaining workers and
is returned.

# Report

WriteReport emits a JSON array with one object per evaluated chunk:

	[
	  {
	    "path": "src/Program.cs",
	    "score": 86.92,
	    "startline": 0,
	    "endline": 42,
	    "rawResponse": "{...}",
	    "cacheHit": false
	  }
	]

Score is -1 when the model reply held no usable criteria.
*/
package analyzer
