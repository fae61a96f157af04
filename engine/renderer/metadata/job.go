package metadata

/** Definition for the work a job performs. */
type JobStart func(params interface{}) (interface{}, error)

/** Definition for completion of a job. */
type JobOnComplete func(result interface{})

/** Definition for failure of a job. */
type JobOnFailure func(err error)

/**
 * @brief Describes a job to be run.
 */
type JobTask struct {
	/** @brief Used in log lines only. */
	Name string
	/** @brief Invoked when the job starts. Required. */
	OnStart JobStart
	/** @brief Invoked with the result when OnStart succeeds. Optional. */
	OnComplete JobOnComplete
	/** @brief Invoked with the error when OnStart fails. Optional. */
	OnFailure JobOnFailure
	/** @brief Data passed to OnStart. */
	InputParams interface{}
	/** @brief Invoked after OnComplete or OnFailure. Optional. */
	OnCompletionCallback func()
}
